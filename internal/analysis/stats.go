package analysis

import (
	"math"
	"sort"
)

// Stats holds descriptive statistics for one metric across sources.
type Stats struct {
	Count  int     `json:"count"`
	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"` // sample standard deviation, 0 for fewer than 2 values
	Range  float64 `json:"range"`
	Median float64 `json:"median"`
	Unit   string  `json:"unit"`
}

// Describe computes Stats over values. An empty input yields zeroes.
func Describe(values []float64, unit string) Stats {
	s := Stats{Count: len(values), Unit: unit}
	if len(values) == 0 {
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Range = s.Max - s.Min
	s.Avg = Mean(values)
	s.Std = StdDev(values)
	s.Median = median(sorted)
	return s
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation, 0 for fewer than 2 values.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Variance returns the sample variance, 0 for fewer than 2 values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return sq / float64(len(values)-1)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ─── Distribution ─────────────────────────────────────────────────────────────

// Pearson returns the Pearson correlation coefficient of x and y. It is 0 when
// the series differ in length, have fewer than 2 points, or either is constant.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	n := float64(len(x))
	var sx, sy, sxy, sx2, sy2 float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxy += x[i] * y[i]
		sx2 += x[i] * x[i]
		sy2 += y[i] * y[i]
	}
	den := (n*sx2 - sx*sx) * (n*sy2 - sy*sy)
	if den <= 0 {
		return 0
	}
	return (n*sxy - sx*sy) / math.Sqrt(den)
}

// Skewness is the third central moment over the cubed sample standard
// deviation. It needs at least 3 values.
func Skewness(values []float64) float64 {
	if len(values) < 3 {
		return 0
	}
	std := StdDev(values)
	if std == 0 {
		return 0
	}
	m := Mean(values)
	var s float64
	for _, v := range values {
		d := v - m
		s += d * d * d
	}
	return (s / float64(len(values))) / math.Pow(std, 3)
}

// Kurtosis is the excess fourth central moment over the sample standard
// deviation to the fourth. It needs at least 4 values.
func Kurtosis(values []float64) float64 {
	if len(values) < 4 {
		return 0
	}
	std := StdDev(values)
	if std == 0 {
		return 0
	}
	m := Mean(values)
	var s float64
	for _, v := range values {
		d := v - m
		s += d * d * d * d
	}
	return (s/float64(len(values)))/math.Pow(std, 4) - 3
}

// Quartiles returns Q1 and Q3 using the exclusive method: positions
// p*(n+1) on the sorted data, linearly interpolated.
func Quartiles(values []float64) (float64, float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return exclusiveQuantile(sorted, 0.25), exclusiveQuantile(sorted, 0.75)
}

func exclusiveQuantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	pos := p * float64(n+1)
	j := int(math.Floor(pos))
	frac := pos - float64(j)
	switch {
	case j < 1:
		return sorted[0]
	case j >= n:
		return sorted[n-1]
	}
	return sorted[j-1] + frac*(sorted[j]-sorted[j-1])
}

// IQROutliers returns the values more than 1.5×IQR beyond Q1/Q3.
// It needs at least 4 values.
func IQROutliers(values []float64) []float64 {
	if len(values) < 4 {
		return nil
	}
	q1, q3 := Quartiles(values)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	var out []float64
	for _, v := range values {
		if v < lo || v > hi {
			out = append(out, v)
		}
	}
	return out
}
