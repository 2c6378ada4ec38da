package analysis

import "github.com/i474232898/weather-consensus/internal/weather"

// Trend labels.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
	TrendLow     = "low"
	TrendHigh    = "high"
)

// Trends describes the direction of temperature and pressure across readings.
type Trends struct {
	Available    bool     `json:"available"`
	Reason       string   `json:"reason,omitempty"`
	Temperature  string   `json:"temperature,omitempty"`
	Pressure     string   `json:"pressure,omitempty"`
	Implications []string `json:"implications,omitempty"`
}

// MonotonicTrend is rising only when every consecutive pair strictly
// increases and falling only when every pair strictly decreases. Anything
// else, including fewer than 3 values, is stable.
func MonotonicTrend(values []float64) string {
	if len(values) < 3 {
		return TrendStable
	}
	rising, falling := true, true
	for i := 0; i+1 < len(values); i++ {
		if !(values[i] < values[i+1]) {
			rising = false
		}
		if !(values[i] > values[i+1]) {
			falling = false
		}
	}
	switch {
	case rising:
		return TrendRising
	case falling:
		return TrendFalling
	default:
		return TrendStable
	}
}

// PressureTrend labels mean pressure in hPa.
func PressureTrend(values []float64) string {
	avg := Mean(values)
	switch {
	case avg < 1000:
		return TrendLow
	case avg > 1020:
		return TrendHigh
	default:
		return TrendStable
	}
}

func interpretTrends(temp, pressure string) []string {
	switch {
	case pressure == TrendLow && temp == TrendRising:
		return []string{"Potential for stormy weather"}
	case pressure == TrendHigh && temp == TrendFalling:
		return []string{"Weather likely to clear"}
	case pressure == TrendLow:
		return []string{"Possible precipitation"}
	}
	return []string{}
}

func analyzeTrends(readings []weather.Reading) Trends {
	if len(readings) < 3 {
		return Trends{Available: false, Reason: "Insufficient data points"}
	}
	temps := make([]float64, len(readings))
	pressures := make([]float64, len(readings))
	for i, r := range readings {
		temps[i] = r.Temperature
		pressures[i] = r.Pressure
	}
	t := Trends{
		Available:   true,
		Temperature: MonotonicTrend(temps),
		Pressure:    PressureTrend(pressures),
	}
	t.Implications = interpretTrends(t.Temperature, t.Pressure)
	return t
}
