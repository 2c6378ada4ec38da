// Package report assembles analysis output and collection metadata into the
// structured report handed to the narration layer.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// Report is immutable once built and is the sole input to narration.
type Report struct {
	Location            string              `json:"location"`
	Timestamp           time.Time           `json:"timestamp"`
	ExecutiveSummary    string              `json:"executive_summary"`
	DetailedAnalysis    DetailedAnalysis    `json:"detailed_analysis"`
	StatisticalInsights StatisticalInsights `json:"statistical_insights"`
	RiskAssessment      RiskAssessment      `json:"risk_assessment"`
	Recommendations     []string            `json:"recommendations"`
	DataQuality         DataQuality         `json:"data_quality"`
	AlertsSummary       AlertsSummary       `json:"alerts_summary"`
}

// Input is everything the builder needs. Readings are the successful ones;
// Attempts holds one reading per attempted source, errored ones included.
type Input struct {
	Location        string
	Readings        []weather.Reading
	Attempts        []weather.Reading
	Insights        analysis.Insights
	Alerts          []analysis.Alert
	Recommendations []string
}

// Builder builds reports. Its clock only feeds timestamps and time-of-day
// context, never the summary or alert counts.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder. A nil clock uses time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build assembles the report.
func (b *Builder) Build(in Input) Report {
	now := b.now()
	attempts := in.Attempts
	if len(attempts) == 0 {
		attempts = in.Readings
	}

	return Report{
		Location:            in.Location,
		Timestamp:           now,
		ExecutiveSummary:    ExecutiveSummary(in.Location, in.Insights, in.Alerts),
		DetailedAnalysis:    detailedAnalysis(in.Location, in.Insights, attempts, now),
		StatisticalInsights: statisticalInsights(in.Readings, in.Insights),
		RiskAssessment:      assessRisk(in.Alerts, in.Insights),
		Recommendations:     in.Recommendations,
		DataQuality:         dataQuality(attempts, in.Insights),
		AlertsSummary:       SummarizeAlerts(in.Alerts),
	}
}

// ExecutiveSummary is a single " | " joined line: conditions, comfort,
// severity and the count of critical and high alerts when there are any.
func ExecutiveSummary(location string, ins analysis.Insights, alerts []analysis.Alert) string {
	parts := []string{
		fmt.Sprintf("Weather Report for %s", location),
		fmt.Sprintf("Current Conditions: %s at %.1f°F", ins.Conditions.Primary, ins.Temperature.Avg),
		fmt.Sprintf("Comfort Level: %s", ins.Comfort.Level),
		fmt.Sprintf("Severity Assessment: %s", strings.ToUpper(string(ins.Severity.Level))),
	}

	counts := analysis.CountBySeverity(alerts)
	if n := counts[analysis.AlertCritical]; n > 0 {
		parts = append(parts, fmt.Sprintf("CRITICAL ALERTS: %d active - Immediate attention required", n))
	}
	if n := counts[analysis.AlertHigh]; n > 0 {
		parts = append(parts, fmt.Sprintf("High Priority Alerts: %d active", n))
	}
	return strings.Join(parts, " | ")
}

// ─── Alerts summary ───────────────────────────────────────────────────────────

// PrioritizedAlert pairs an alert with its priority.
type PrioritizedAlert struct {
	Alert             analysis.Alert `json:"alert"`
	PriorityScore     int            `json:"priority_score"`
	AttentionRequired bool           `json:"attention_required"`
}

// AlertsSummary counts alerts and lists the most urgent ones.
type AlertsSummary struct {
	Total      int                            `json:"total"`
	BySeverity map[analysis.AlertSeverity]int `json:"by_severity"`
	ByType     map[string]int                 `json:"by_type"`
	Priority   []PrioritizedAlert             `json:"priority_order"`
}

const topAlerts = 5

// SummarizeAlerts counts by severity and type and keeps the top alerts by severity weight.
func SummarizeAlerts(alerts []analysis.Alert) AlertsSummary {
	s := AlertsSummary{
		Total:      len(alerts),
		BySeverity: analysis.CountBySeverity(alerts),
		ByType:     map[string]int{},
		Priority:   []PrioritizedAlert{},
	}
	for _, a := range alerts {
		s.ByType[a.Type]++
	}

	sorted := make([]analysis.Alert, len(alerts))
	copy(sorted, alerts)
	analysis.SortAlerts(sorted)
	for i, a := range sorted {
		if i == topAlerts {
			break
		}
		s.Priority = append(s.Priority, PrioritizedAlert{
			Alert:             a,
			PriorityScore:     a.Severity.Weight(),
			AttentionRequired: a.Severity.Urgent(),
		})
	}
	return s
}
