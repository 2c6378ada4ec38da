package analysis

import "math"

// Comfort is the perceived pleasantness of the averaged conditions.
type Comfort struct {
	Index   float64  `json:"index"`
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

// Comfort levels, from best to worst.
const (
	ComfortVeryComfortable   = "Very Comfortable"
	ComfortComfortable       = "Comfortable"
	ComfortModerate          = "Moderate"
	ComfortUncomfortable     = "Uncomfortable"
	ComfortVeryUncomfortable = "Very Uncomfortable"
)

// ComfortIndex scores temperature (°F), humidity (%) and wind (mph) on 0-100.
// Each term is 100 inside its ideal band and never increases moving away from it.
func ComfortIndex(temp, humidity, wind float64) float64 {
	c := 0.5*temperatureComfort(temp) + 0.3*humidityComfort(humidity) + 0.2*windComfort(wind)
	return math.Max(0, math.Min(100, c))
}

// ComfortLevel maps an index onto the five qualitative levels.
func ComfortLevel(index float64) string {
	switch {
	case index >= 80:
		return ComfortVeryComfortable
	case index >= 60:
		return ComfortComfortable
	case index >= 40:
		return ComfortModerate
	case index >= 20:
		return ComfortUncomfortable
	default:
		return ComfortVeryUncomfortable
	}
}

// Below 32°F and above 90°F the decay continues from the value reached at
// the boundary, so the curve has no upward step at either edge.
func temperatureComfort(t float64) float64 {
	mid := func(t float64) float64 { return 100 - math.Abs(t-70)*2 }
	switch {
	case t >= 68 && t <= 72:
		return 100
	case t < 32:
		return math.Max(0, mid(32)-(32-t)*3)
	case t > 90:
		return math.Max(0, mid(90)-(t-90)*2)
	default:
		return mid(t)
	}
}

func humidityComfort(h float64) float64 {
	if h >= 40 && h <= 60 {
		return 100
	}
	return math.Max(0, 100-math.Abs(h-50)*1.5)
}

func windComfort(w float64) float64 {
	mid := func(w float64) float64 { return math.Max(0, 100-math.Abs(w-10)*5) }
	switch {
	case w >= 5 && w <= 15:
		return 100
	case w > 30:
		return math.Max(0, mid(30)-(w-30)*3)
	default:
		return mid(w)
	}
}

// ComfortFactors lists the conditions dragging comfort down.
func ComfortFactors(temp, humidity, wind float64) []string {
	factors := []string{}
	switch {
	case temp < 32:
		factors = append(factors, "Extreme cold - risk of hypothermia")
	case temp > 90:
		factors = append(factors, "Extreme heat - risk of heat exhaustion")
	}
	switch {
	case humidity > 80:
		factors = append(factors, "High humidity - feels muggier")
	case humidity < 30:
		factors = append(factors, "Low humidity - dry air")
	}
	if wind > 20 {
		factors = append(factors, "High winds - wind chill effect")
	}
	return factors
}

func assessComfort(temp, humidity, wind float64) Comfort {
	idx := ComfortIndex(temp, humidity, wind)
	return Comfort{
		Index:   idx,
		Level:   ComfortLevel(idx),
		Factors: ComfortFactors(temp, humidity, wind),
	}
}
