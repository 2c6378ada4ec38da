package analysis

import (
	"fmt"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// RiskFactor is one identified hazard.
type RiskFactor struct {
	Type        string `json:"type"`
	Level       string `json:"level"` // low, medium or high
	Description string `json:"description"`
}

// Risks aggregates the identified risk factors.
type Risks struct {
	Factors      []RiskFactor `json:"factors"`
	Count        int          `json:"count"`
	OverallLevel string       `json:"overall_level"`
	Score        float64      `json:"score"` // mean of low=1, medium=2, high=3
}

var conditionRisks = map[weather.Condition]RiskFactor{
	weather.ConditionThunderstorm: {Type: "lightning", Level: "high"},
	weather.ConditionHeavyRain:    {Type: "flooding", Level: "medium"},
	weather.ConditionSnow:         {Type: "slippery", Level: "medium"},
	weather.ConditionFog:          {Type: "visibility", Level: "low"},
}

var riskWeights = map[string]float64{"high": 3, "medium": 2, "low": 1}

// AssessRisks identifies temperature, condition and wind hazards.
func AssessRisks(temp Stats, cond Conditions, wind Stats) Risks {
	factors := []RiskFactor{}

	switch {
	case temp.Avg > 95:
		factors = append(factors, RiskFactor{"heat", "high", "Extreme heat risk"})
	case temp.Avg > 85:
		factors = append(factors, RiskFactor{"heat", "medium", "High heat risk"})
	case temp.Avg < 20:
		factors = append(factors, RiskFactor{"cold", "high", "Extreme cold risk"})
	case temp.Avg < 32:
		factors = append(factors, RiskFactor{"cold", "medium", "Freezing risk"})
	}

	if r, ok := conditionRisks[cond.Primary]; ok {
		r.Description = fmt.Sprintf("%s conditions", cond.Primary)
		factors = append(factors, r)
	}

	switch {
	case wind.Max > 40:
		factors = append(factors, RiskFactor{"wind", "high", "Dangerous winds"})
	case wind.Max > 25:
		factors = append(factors, RiskFactor{"wind", "medium", "Strong winds"})
	}

	var total float64
	for _, f := range factors {
		total += riskWeights[f.Level]
	}
	var avg float64
	if len(factors) > 0 {
		avg = total / float64(len(factors))
	}

	overall := "low"
	switch {
	case avg > 2:
		overall = "high"
	case avg > 1:
		overall = "medium"
	}

	return Risks{
		Factors:      factors,
		Count:        len(factors),
		OverallLevel: overall,
		Score:        avg,
	}
}
