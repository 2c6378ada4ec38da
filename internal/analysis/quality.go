package analysis

import (
	"fmt"
	"math"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// Consistency measures how well sources agree with one another.
type Consistency struct {
	ConditionsAgreement float64 `json:"conditions_agreement"`
	TemperatureVariance float64 `json:"temperature_variance"`
	ReliableSources     int     `json:"reliable_sources"`
	AverageConfidence   float64 `json:"average_confidence"`
	Assessment          string  `json:"assessment"` // high, medium or low
}

// Outlier is a reading far from the cross-source mean.
type Outlier struct {
	Source    string  `json:"source"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Deviation float64 `json:"deviation"`
}

// DataQuality collects diagnostics about the input readings.
type DataQuality struct {
	SourceAgreement     float64   `json:"source_agreement"`
	TemperatureVariance float64   `json:"temperature_variance"`
	Outliers            []Outlier `json:"outliers"`
	MissingData         []string  `json:"missing_data"`
}

func assessConsistency(readings []weather.Reading, cond Conditions, p Policy) Consistency {
	if len(readings) < 2 {
		return Consistency{
			ConditionsAgreement: 1,
			ReliableSources:     len(readings),
			AverageConfidence:   1,
			Assessment:          "high",
		}
	}

	temps := make([]float64, len(readings))
	for i, r := range readings {
		temps[i] = r.Temperature
	}
	mean := Mean(temps)
	variance := Variance(temps)

	var confSum float64
	reliable := 0
	for _, r := range readings {
		conf := 1.0
		if !r.OK() {
			conf *= 0.5
		} else {
			reliable++
		}
		if math.Abs(r.Temperature-mean) > p.SourceDeviation {
			conf *= 0.7
		}
		confSum += conf
	}

	c := Consistency{
		ConditionsAgreement: cond.Confidence,
		TemperatureVariance: variance,
		ReliableSources:     reliable,
		AverageConfidence:   confSum / float64(len(readings)),
	}
	switch {
	case c.ConditionsAgreement > 0.7 && variance < 5:
		c.Assessment = "high"
	case c.ConditionsAgreement > 0.5:
		c.Assessment = "medium"
	default:
		c.Assessment = "low"
	}
	return c
}

// TemperatureOutliers returns readings more than sigma sample standard
// deviations from the mean temperature. It needs at least 3 readings.
func TemperatureOutliers(readings []weather.Reading, sigma float64) []Outlier {
	out := []Outlier{}
	if len(readings) < 3 {
		return out
	}
	temps := make([]float64, len(readings))
	for i, r := range readings {
		temps[i] = r.Temperature
	}
	mean, std := Mean(temps), StdDev(temps)
	if std == 0 {
		return out
	}
	for _, r := range readings {
		if dev := r.Temperature - mean; math.Abs(dev) > sigma*std {
			out = append(out, Outlier{Source: r.Source, Metric: "temperature", Value: r.Temperature, Deviation: dev})
		}
	}
	return out
}

// MissingData lists source-qualified gaps in the readings.
func MissingData(readings []weather.Reading) []string {
	missing := []string{}
	for _, r := range readings {
		if !r.OK() && r.Temperature == 0 {
			missing = append(missing, fmt.Sprintf("%s: Invalid temperature data", r.Source))
		}
		if r.Condition == "" || r.Condition == weather.ConditionUnknown {
			missing = append(missing, fmt.Sprintf("%s: Missing conditions", r.Source))
		}
		if r.OK() && r.Pressure == 0 {
			missing = append(missing, fmt.Sprintf("%s: Missing pressure", r.Source))
		}
	}
	return missing
}
