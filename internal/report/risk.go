package report

import (
	"math"
	"sort"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// RiskAssessment splits urgent alerts from risks that may still develop.
type RiskAssessment struct {
	Immediate  []analysis.Alert `json:"immediate_risks"`
	Potential  []PotentialRisk  `json:"potential_risks"`
	Mitigation []Mitigation     `json:"mitigation_strategies"`
}

// PotentialRisk is a hazard the current readings make plausible.
type PotentialRisk struct {
	Type        string `json:"type"`
	Likelihood  string `json:"likelihood"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

// Mitigation is a suggested response to an alert or a condition.
type Mitigation struct {
	ForAlert     string `json:"for_alert,omitempty"`
	ForCondition string `json:"for_condition,omitempty"`
	Strategy     string `json:"strategy"`
	Priority     string `json:"priority"`
	Timeline     string `json:"timeline"`
}

func assessRisk(alerts []analysis.Alert, ins analysis.Insights) RiskAssessment {
	ra := RiskAssessment{
		Immediate:  []analysis.Alert{},
		Potential:  []PotentialRisk{},
		Mitigation: []Mitigation{},
	}

	for _, a := range alerts {
		if !a.Severity.Urgent() {
			continue
		}
		ra.Immediate = append(ra.Immediate, a)

		strategy := a.Recommendation
		if strategy == "" {
			strategy = "Take appropriate precautions"
		}
		ra.Mitigation = append(ra.Mitigation, Mitigation{
			ForAlert: a.Type,
			Strategy: strategy,
			Priority: "high",
			Timeline: "immediate",
		})
	}

	temp, primary := ins.Temperature.Avg, ins.Conditions.Primary
	if temp < 32 && primary == weather.ConditionRain {
		ra.Potential = append(ra.Potential, PotentialRisk{
			Type:        "freezing_rain",
			Likelihood:  "medium",
			Impact:      "high",
			Description: "Potential for freezing rain if temperature drops further",
		})
	}
	if temp > 85 && ins.Humidity.Avg > 70 {
		ra.Potential = append(ra.Potential, PotentialRisk{
			Type:        "heat_index",
			Likelihood:  "high",
			Impact:      "medium",
			Description: "High heat index risk due to combination of heat and humidity",
		})
	}

	if primary == weather.ConditionRain {
		ra.Mitigation = append(ra.Mitigation, Mitigation{
			ForCondition: "rain",
			Strategy:     "Carry waterproof gear, allow extra travel time",
			Priority:     "medium",
			Timeline:     "ongoing",
		})
	}
	return ra
}

// ─── Data quality ─────────────────────────────────────────────────────────────

// SourceReliability scores one source on error rate and temperature consistency.
type SourceReliability struct {
	Attempts               int     `json:"count"`
	Errors                 int     `json:"errors"`
	ErrorRate              float64 `json:"error_rate"`
	TemperatureDeviation   float64 `json:"temperature_deviation"`
	TemperatureConsistency float64 `json:"temperature_consistency"`
	ReliabilityScore       float64 `json:"reliability_score"`
}

// DataQuality scores the sources and the completeness of their readings.
type DataQuality struct {
	BySource           map[string]SourceReliability `json:"source_reliability"`
	MostReliable       string                       `json:"most_reliable,omitempty"`
	AverageReliability float64                      `json:"average_reliability"`
	Consistency        analysis.Consistency         `json:"consistency_metrics"`
	CompletenessScore  float64                      `json:"completeness_score"`
	MissingData        []string                     `json:"missing_data"`
}

// ReliabilityScore is 100·(1−errorRate)·(1−min(1, deviation/10)), where
// deviation is how far a source's temperature strays from the cross-source mean.
func ReliabilityScore(errorRate, deviation float64) float64 {
	return 100 * (1 - errorRate) * (1 - math.Min(1, deviation/10))
}

func dataQuality(attempts []weather.Reading, ins analysis.Insights) DataQuality {
	dq := DataQuality{
		BySource:          map[string]SourceReliability{},
		Consistency:       ins.Consistency,
		CompletenessScore: CompletenessScore(attempts),
		MissingData:       analysis.MissingData(attempts),
	}

	type acc struct {
		attempts, errors int
		temps            []float64
	}
	bySource := map[string]*acc{}
	for _, r := range attempts {
		a, ok := bySource[r.Source]
		if !ok {
			a = &acc{}
			bySource[r.Source] = a
		}
		a.attempts++
		if !r.OK() {
			a.errors++
			continue
		}
		a.temps = append(a.temps, r.Temperature)
	}

	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}
	sort.Strings(names)

	mean := ins.Temperature.Avg
	var total float64
	best := -1.0
	for _, name := range names {
		a := bySource[name]
		sr := SourceReliability{
			Attempts:               a.attempts,
			Errors:                 a.errors,
			ErrorRate:              float64(a.errors) / float64(a.attempts),
			TemperatureConsistency: analysis.StdDev(a.temps),
		}
		if len(a.temps) > 0 {
			sr.TemperatureDeviation = math.Abs(analysis.Mean(a.temps) - mean)
		}
		sr.ReliabilityScore = ReliabilityScore(sr.ErrorRate, sr.TemperatureDeviation)

		dq.BySource[name] = sr
		total += sr.ReliabilityScore
		if sr.ReliabilityScore > best {
			best = sr.ReliabilityScore
			dq.MostReliable = name
		}
	}
	if len(names) > 0 {
		dq.AverageReliability = total / float64(len(names))
	}
	return dq
}

// CompletenessScore rates on 0-100 how many core fields the readings populate.
func CompletenessScore(readings []weather.Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range readings {
		f := 1.0
		if r.Temperature == 0 {
			f *= 0.7
		}
		if r.Condition == "" || r.Condition == weather.ConditionUnknown {
			f *= 0.8
		}
		if r.Humidity == 0 {
			f *= 0.9
		}
		if r.WindSpeed == 0 {
			f *= 0.9
		}
		sum += f
	}
	return sum / float64(len(readings)) * 100
}
