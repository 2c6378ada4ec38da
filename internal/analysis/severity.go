package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// SeverityLevel is the categorical weather impact level.
type SeverityLevel string

const (
	SeverityNormal   SeverityLevel = "normal"
	SeverityModerate SeverityLevel = "moderate"
	SeverityHigh     SeverityLevel = "high"
	SeveritySevere   SeverityLevel = "severe"
)

// Severity is the outcome of the severity cascade.
type Severity struct {
	Level  SeverityLevel `json:"level"`
	Reason string        `json:"reason"`
	Score  float64       `json:"score"`
}

// Conditions summarizes the condition buckets reported by sources.
type Conditions struct {
	Primary      weather.Condition `json:"primary"`
	Confidence   float64           `json:"confidence"`
	Distribution map[string]int    `json:"distribution"`
	Descriptions []string          `json:"descriptions"`
	// Assessment is severe, high, moderate or low.
	Assessment string `json:"assessment"`
}

var (
	forcingSevere = []weather.Condition{weather.ConditionThunderstorm, weather.ConditionBlizzard, weather.ConditionHurricane}
	extremeReason = []weather.Condition{weather.ConditionHeavyRain, weather.ConditionHeavySnow, weather.ConditionIceStorm}
)

func isOneOf(c weather.Condition, set ...weather.Condition) bool {
	for _, s := range set {
		if c == s {
			return true
		}
	}
	return false
}

// AssessCondition classifies a single condition bucket.
func AssessCondition(c weather.Condition) string {
	switch {
	case isOneOf(c, weather.ConditionThunderstorm, weather.ConditionBlizzard, weather.ConditionHurricane, weather.ConditionTornado):
		return "severe"
	case isOneOf(c, weather.ConditionHeavyRain, weather.ConditionHeavySnow, weather.ConditionIceStorm, weather.ConditionFreezingRain):
		return "high"
	case isOneOf(c, weather.ConditionRain, weather.ConditionSnow, weather.ConditionFog, weather.ConditionWindy):
		return "moderate"
	default:
		return "low"
	}
}

func analyzeConditions(readings []weather.Reading) Conditions {
	c := Conditions{Distribution: map[string]int{}, Descriptions: []string{}}

	names := make([]string, len(readings))
	seen := map[string]bool{}
	for i, r := range readings {
		cond := r.Condition
		if cond == "" {
			cond = weather.ConditionUnknown
		}
		names[i] = string(cond)
		c.Distribution[names[i]]++

		if d := r.Description; d != "" && !seen[d] && len(c.Descriptions) < 5 {
			seen[d] = true
			c.Descriptions = append(c.Descriptions, d)
		}
	}

	primary, count := weather.Mode(names)
	if primary == "" {
		primary = string(weather.ConditionUnknown)
	}
	c.Primary = weather.Condition(primary)
	if len(readings) > 0 {
		c.Confidence = float64(count) / float64(len(readings))
	}
	c.Assessment = AssessCondition(c.Primary)
	return c
}

// ClassifySeverity runs the severity cascade. Storm-class conditions force
// severe outright; otherwise any accumulated reason yields high.
func ClassifySeverity(temp, wind Stats, cond Conditions, p Policy) Severity {
	level, reason := severityLevel(temp, wind, cond, p)
	return Severity{
		Level:  level,
		Reason: reason,
		Score:  severityScore(level, cond, temp, p),
	}
}

func severityLevel(temp, wind Stats, cond Conditions, p Policy) (SeverityLevel, string) {
	if isOneOf(cond.Primary, forcingSevere...) {
		return SeveritySevere, "Extreme weather conditions detected"
	}

	var reasons []string
	if isOneOf(cond.Primary, extremeReason...) {
		reasons = append(reasons, fmt.Sprintf("%s conditions", cond.Primary))
	}
	if temp.Avg > p.Thresholds.TempHigh {
		reasons = append(reasons, fmt.Sprintf("High temperature (%.1f°F)", temp.Avg))
	}
	if temp.Avg < p.Thresholds.TempLow {
		reasons = append(reasons, fmt.Sprintf("Low temperature (%.1f°F)", temp.Avg))
	}
	if wind.Max > p.Thresholds.Wind {
		reasons = append(reasons, fmt.Sprintf("High winds (%.1f mph)", wind.Max))
	}
	if cond.Confidence < p.LowAgreement {
		reasons = append(reasons, "Low data confidence")
	}

	switch {
	case len(reasons) > 0:
		return SeverityHigh, strings.Join(reasons, ", ")
	case cond.Assessment == "moderate":
		return SeverityModerate, "Moderate weather conditions"
	default:
		return SeverityNormal, "Normal weather conditions"
	}
}

func severityScore(level SeverityLevel, cond Conditions, temp Stats, p Policy) float64 {
	score, ok := p.SeverityBase[level]
	if !ok {
		score = p.SeverityBase[SeverityNormal]
	}

	switch {
	case isOneOf(cond.Primary, weather.ConditionThunderstorm, weather.ConditionBlizzard):
		score += 20
	case isOneOf(cond.Primary, weather.ConditionHeavyRain, weather.ConditionHeavySnow):
		score += 10
	}
	if temp.Range > p.SeverityRangeBump {
		score += p.SeverityRangeAdd
	}
	return math.Min(100, score)
}
