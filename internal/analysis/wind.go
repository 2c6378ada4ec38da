package analysis

import (
	"math"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// Wind extends the speed statistics with direction analysis.
type Wind struct {
	Stats
	PrimaryDirection     string `json:"primary_direction"`
	DirectionVariability string `json:"direction_variability"`
}

var cardinals = []struct {
	label string
	deg   float64
}{
	{"N", 0}, {"NNE", 22.5}, {"NE", 45}, {"ENE", 67.5},
	{"E", 90}, {"ESE", 112.5}, {"SE", 135}, {"SSE", 157.5},
	{"S", 180}, {"SSW", 202.5}, {"SW", 225}, {"WSW", 247.5},
	{"W", 270}, {"WNW", 292.5}, {"NW", 315}, {"NNW", 337.5},
}

// Cardinal returns the nearest of the 16 compass points to deg.
func Cardinal(deg float64) string {
	deg = math.Mod(math.Mod(deg, 360)+360, 360)
	best, bestDiff := "N", 360.0
	for _, c := range cardinals {
		d := math.Abs(deg - c.deg)
		diff := math.Min(d, 360-d)
		if diff < bestDiff {
			best, bestDiff = c.label, diff
		}
	}
	return best
}

// PrimaryDirection maps every direction to a compass point and returns the
// most frequent one. No directions means calm or variable wind.
func PrimaryDirection(degrees []float64) string {
	if len(degrees) == 0 {
		return "Variable/Calm"
	}
	labels := make([]string, len(degrees))
	for i, d := range degrees {
		labels[i] = Cardinal(d)
	}
	label, _ := weather.Mode(labels)
	return label
}

// ResultantLength is the mean resultant vector length of the directions, in [0,1].
func ResultantLength(degrees []float64) float64 {
	if len(degrees) == 0 {
		return 0
	}
	var x, y float64
	for _, d := range degrees {
		rad := d * math.Pi / 180
		x += math.Cos(rad)
		y += math.Sin(rad)
	}
	n := float64(len(degrees))
	return math.Hypot(x/n, y/n)
}

// DirectionVariability labels how scattered the directions are.
func DirectionVariability(degrees []float64) string {
	if len(degrees) < 2 {
		return "Low"
	}
	r := ResultantLength(degrees)
	switch {
	case r > 0.9:
		return "Very Low"
	case r > 0.7:
		return "Low"
	case r > 0.5:
		return "Moderate"
	case r > 0.3:
		return "High"
	default:
		return "Very High"
	}
}

func analyzeWind(readings []weather.Reading) Wind {
	speeds := make([]float64, len(readings))
	var dirs []float64
	for i, r := range readings {
		speeds[i] = r.WindSpeed
		// 0 is what providers report for calm or unknown direction.
		if r.WindDirection > 0 {
			dirs = append(dirs, r.WindDirection)
		}
	}
	return Wind{
		Stats:                Describe(speeds, "mph"),
		PrimaryDirection:     PrimaryDirection(dirs),
		DirectionVariability: DirectionVariability(dirs),
	}
}
