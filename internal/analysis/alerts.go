package analysis

import (
	"fmt"
	"sort"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// AlertSeverity ranks alerts for presentation.
type AlertSeverity string

const (
	AlertLow      AlertSeverity = "low"
	AlertMedium   AlertSeverity = "medium"
	AlertHigh     AlertSeverity = "high"
	AlertCritical AlertSeverity = "critical"
)

// AlertSeverities lists severities from most to least urgent.
var AlertSeverities = []AlertSeverity{AlertCritical, AlertHigh, AlertMedium, AlertLow}

// Weight is 4 for critical down to 1 for low; unknown severities weigh 1.
func (s AlertSeverity) Weight() int {
	switch s {
	case AlertCritical:
		return 4
	case AlertHigh:
		return 3
	case AlertMedium:
		return 2
	default:
		return 1
	}
}

// Urgent reports whether the alert needs immediate attention.
func (s AlertSeverity) Urgent() bool {
	return s == AlertCritical || s == AlertHigh
}

// Alert is a threshold-triggered warning. Alerts are generated per request and never persisted.
type Alert struct {
	Severity       AlertSeverity `json:"severity"`
	Type           string        `json:"type"`
	Message        string        `json:"message"`
	Threshold      *float64      `json:"threshold,omitempty"`
	CurrentValue   *float64      `json:"current_value,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
}

type conditionAlert struct {
	severity       AlertSeverity
	kind           string
	message        string
	recommendation string
}

var conditionAlerts = map[weather.Condition]conditionAlert{
	weather.ConditionThunderstorm: {AlertCritical, "lightning", "Thunderstorm warning - lightning risk",
		"Seek indoor shelter immediately, avoid open areas and tall objects"},
	weather.ConditionHeavyRain: {AlertHigh, "flooding", "Heavy rainfall - flood risk",
		"Avoid low-lying areas, do not drive through flooded roads"},
	weather.ConditionSnow: {AlertMedium, "winter", "Snow conditions",
		"Drive carefully, watch for icy patches, dress warmly"},
	weather.ConditionFog: {AlertLow, "visibility", "Reduced visibility due to fog",
		"Use low beam headlights, reduce speed, increase following distance"},
}

// GenerateAlerts evaluates every alert category independently against ins and
// returns the alerts ordered by severity weight, most urgent first.
func GenerateAlerts(ins Insights, p Policy) []Alert {
	th := p.Thresholds
	alerts := []Alert{}

	avg := ins.Temperature.Avg
	if avg > th.TempHigh {
		sev := AlertHigh
		if avg > th.TempHigh+p.TempCriticalMargin {
			sev = AlertCritical
		}
		alerts = append(alerts, Alert{
			Severity:       sev,
			Type:           "heat",
			Message:        fmt.Sprintf("Heat alert: Temperature is %.1f°F (threshold: %g°F)", avg, th.TempHigh),
			Threshold:      weather.Ptr(th.TempHigh),
			CurrentValue:   weather.Ptr(avg),
			Recommendation: "Stay hydrated, avoid outdoor activities during peak heat, check on vulnerable individuals",
		})
	}
	if avg < th.TempLow {
		sev := AlertHigh
		if avg < th.TempLow-p.TempCriticalMargin {
			sev = AlertCritical
		}
		alerts = append(alerts, Alert{
			Severity:       sev,
			Type:           "cold",
			Message:        fmt.Sprintf("Cold alert: Temperature is %.1f°F (threshold: %g°F)", avg, th.TempLow),
			Threshold:      weather.Ptr(th.TempLow),
			CurrentValue:   weather.Ptr(avg),
			Recommendation: "Wear layers, limit time outdoors, check heating systems",
		})
	}

	if spread := ins.Temperature.Max - ins.Temperature.Min; spread > p.TempVariationAlert {
		alerts = append(alerts, Alert{
			Severity:       AlertMedium,
			Type:           "temperature_variation",
			Message:        fmt.Sprintf("Large temperature variation: %.1f°F range", spread),
			CurrentValue:   weather.Ptr(spread),
			Recommendation: "Dress in layers to adapt to changing temperatures",
		})
	}

	if wind := ins.Wind.Max; wind > th.Wind {
		sev := AlertMedium
		switch {
		case wind > th.Wind+p.WindCriticalMargin:
			sev = AlertCritical
		case wind > th.Wind+p.WindHighMargin:
			sev = AlertHigh
		}
		alerts = append(alerts, Alert{
			Severity:       sev,
			Type:           "wind",
			Message:        fmt.Sprintf("Wind alert: Winds up to %.1f mph (threshold: %g mph)", wind, th.Wind),
			Threshold:      weather.Ptr(th.Wind),
			CurrentValue:   weather.Ptr(wind),
			Recommendation: "Secure outdoor objects, be cautious when driving high-profile vehicles",
		})
	}

	if ins.Precipitation != nil && th.Precipitation > 0 {
		if precip := ins.Precipitation.Avg; precip > th.Precipitation {
			sev := AlertMedium
			if precip > 2*th.Precipitation {
				sev = AlertHigh
			}
			alerts = append(alerts, Alert{
				Severity:       sev,
				Type:           "precipitation",
				Message:        fmt.Sprintf("Heavy precipitation: %.2f in (threshold: %g in)", precip, th.Precipitation),
				Threshold:      weather.Ptr(th.Precipitation),
				CurrentValue:   weather.Ptr(precip),
				Recommendation: "Expect standing water, allow extra travel time",
			})
		}
	}

	if ca, ok := conditionAlerts[ins.Conditions.Primary]; ok {
		alerts = append(alerts, Alert{
			Severity:       ca.severity,
			Type:           ca.kind,
			Message:        ca.message,
			Recommendation: ca.recommendation,
		})
	}

	if agreement := ins.Consistency.ConditionsAgreement; agreement < p.LowAgreement {
		alerts = append(alerts, Alert{
			Severity:       AlertLow,
			Type:           "data_quality",
			Message:        fmt.Sprintf("Low confidence in weather data (%.0f%% agreement)", agreement*100),
			Recommendation: "Consider checking additional weather sources",
		})
	}

	for _, r := range ins.Risks.Factors {
		if r.Level != "high" {
			continue
		}
		alerts = append(alerts, Alert{
			Severity:       AlertHigh,
			Type:           "risk_" + r.Type,
			Message:        "High risk: " + r.Description,
			Recommendation: "Take appropriate precautions",
		})
	}

	SortAlerts(alerts)
	return alerts
}

// SortAlerts orders alerts by descending severity weight, keeping generation
// order within a severity.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Weight() > alerts[j].Severity.Weight()
	})
}

// CountBySeverity returns a count for every severity, zeroes included.
func CountBySeverity(alerts []Alert) map[AlertSeverity]int {
	counts := make(map[AlertSeverity]int, len(AlertSeverities))
	for _, s := range AlertSeverities {
		counts[s] = 0
	}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}
