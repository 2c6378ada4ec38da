package weather

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
)

// Strategy selects how numeric fields are averaged across sources.
type Strategy string

const (
	// StrategySimple is an unweighted arithmetic mean.
	StrategySimple Strategy = "simple"
	// StrategyWeighted is a reliability-weighted mean using a per-source weight table.
	StrategyWeighted Strategy = "weighted"
)

// DefaultSourceWeights is the per-source reliability table used by StrategyWeighted.
// Sources not listed get DefaultSourceWeight.
var DefaultSourceWeights = map[string]float64{
	"openweather":    1.0,
	"weatherapi":     0.9,
	"visualcrossing": 0.85,
	"openmeteo":      0.8,
}

// DefaultSourceWeight applies to sources missing from the weight table.
const DefaultSourceWeight = 1.0

// ConfidenceTier maps a coefficient of variation ceiling to an agreement score.
type ConfidenceTier struct {
	MaxCV float64
	Score float64
}

// ConfidencePolicy controls the overall numeric agreement score.
type ConfidencePolicy struct {
	TemperatureWeight float64
	WindWeight        float64
	HumidityWeight    float64

	// Tiers must be sorted by MaxCV ascending; a CV above the last tier scores FloorScore.
	Tiers      []ConfidenceTier
	FloorScore float64

	// FullSourceCount is the number of sources at which the score is no longer scaled down.
	FullSourceCount int
	// Insufficient is returned when fewer than two samples are available.
	Insufficient float64
}

// DefaultConfidencePolicy returns the stock 0.4/0.3/0.3 policy.
func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{
		TemperatureWeight: 0.4,
		WindWeight:        0.3,
		HumidityWeight:    0.3,
		Tiers: []ConfidenceTier{
			{MaxCV: 0.05, Score: 1.0},
			{MaxCV: 0.10, Score: 0.95},
			{MaxCV: 0.20, Score: 0.85},
			{MaxCV: 0.35, Score: 0.6},
			{MaxCV: 0.50, Score: 0.35},
		},
		FloorScore:      0.1,
		FullSourceCount: 3,
		Insufficient:    0.5,
	}
}

// ConsensusOptions configures the consensus engine.
type ConsensusOptions struct {
	Strategy Strategy
	Weights  map[string]float64

	Confidence ConfidencePolicy

	// TemperatureSpread is the max-min °F spread above which sources disagree.
	TemperatureSpread float64
}

// DefaultConsensusOptions returns simple averaging with the default policy.
func DefaultConsensusOptions() ConsensusOptions {
	return ConsensusOptions{
		Strategy:          StrategySimple,
		Weights:           DefaultSourceWeights,
		Confidence:        DefaultConfidencePolicy(),
		TemperatureSpread: 5,
	}
}

// SourceValue is one source's contribution to a disagreement.
type SourceValue struct {
	Source    string    `json:"source"`
	Value     float64   `json:"value"`
	Condition Condition `json:"condition,omitempty"`
}

// Disagreement describes a field on which sources do not agree.
type Disagreement struct {
	Field       string        `json:"field"`
	Description string        `json:"description"`
	Values      []SourceValue `json:"values"`
}

// Consensus is the statistically reconciled view across successful readings.
// It is recomputed for every request.
type Consensus struct {
	Strategy Strategy `json:"strategy"`

	Temperature    float64 `json:"temperature_avg"`
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureMax float64 `json:"temperature_max"`
	FeelsLike      float64 `json:"feels_like_avg"`
	Humidity       float64 `json:"humidity_avg"`
	Pressure       float64 `json:"pressure_avg"`
	WindSpeed      float64 `json:"wind_speed_avg"`
	WindDirection  float64 `json:"wind_direction_avg"`

	WindGust      *float64 `json:"wind_gust_avg,omitempty"`
	CloudCover    *float64 `json:"cloud_cover_avg,omitempty"`
	Precipitation *float64 `json:"precipitation_avg,omitempty"`
	UVIndex       *float64 `json:"uv_index_avg,omitempty"`

	Condition           Condition `json:"conditions_consensus"`
	ConditionConfidence float64   `json:"conditions_confidence"`
	Description         string    `json:"description,omitempty"`

	// Confidence is the overall numeric agreement score in [0,1].
	Confidence    float64        `json:"confidence_score"`
	Disagreements []Disagreement `json:"disagreements"`

	SourcesUsed  int      `json:"sources_count"`
	SourcesTotal int      `json:"sources_total"`
	Sources      []string `json:"sources"`
}

// ConsensusEngine reduces readings into a Consensus.
type ConsensusEngine struct {
	opts ConsensusOptions
}

// NewConsensusEngine creates a ConsensusEngine, filling unset options with defaults.
func NewConsensusEngine(opts ConsensusOptions) *ConsensusEngine {
	def := DefaultConsensusOptions()
	if opts.Strategy == "" {
		opts.Strategy = def.Strategy
	}
	if opts.Weights == nil {
		opts.Weights = def.Weights
	}
	if len(opts.Confidence.Tiers) == 0 {
		opts.Confidence = def.Confidence
	}
	if opts.TemperatureSpread <= 0 {
		opts.TemperatureSpread = def.TemperatureSpread
	}
	return &ConsensusEngine{opts: opts}
}

// Strategy returns the configured averaging strategy.
func (e *ConsensusEngine) Strategy() Strategy {
	return e.opts.Strategy
}

// Compute aggregates readings. Errored readings count towards SourcesTotal but
// never contribute values. It fails with ErrInsufficientData when no usable reading remains.
func (e *ConsensusEngine) Compute(readings []Reading) (Consensus, error) {
	valid := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if r.OK() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return Consensus{}, fmt.Errorf("consensus: %w", ErrInsufficientData)
	}

	weights := make([]float64, len(valid))
	for i, r := range valid {
		weights[i] = e.weight(r.Source)
	}

	field := func(get func(Reading) float64) float64 {
		samples := make([]sample, len(valid))
		for i, r := range valid {
			samples[i] = sample{value: get(r), weight: weights[i]}
		}
		return weightedMean(samples)
	}
	optional := func(get func(Reading) *float64) *float64 {
		var samples []sample
		for i, r := range valid {
			if v := get(r); v != nil {
				samples = append(samples, sample{value: *v, weight: weights[i]})
			}
		}
		if len(samples) == 0 {
			return nil
		}
		m := weightedMean(samples)
		return &m
	}

	c := Consensus{
		Strategy:     e.opts.Strategy,
		SourcesUsed:  len(valid),
		SourcesTotal: len(readings),

		Temperature: field(func(r Reading) float64 { return r.Temperature }),
		FeelsLike:   field(func(r Reading) float64 { return r.FeelsLike }),
		Humidity:    field(func(r Reading) float64 { return r.Humidity }),
		Pressure:    field(func(r Reading) float64 { return r.Pressure }),
		WindSpeed:   field(func(r Reading) float64 { return r.WindSpeed }),

		WindGust:      optional(func(r Reading) *float64 { return r.WindGust }),
		CloudCover:    optional(func(r Reading) *float64 { return r.CloudCover }),
		Precipitation: optional(func(r Reading) *float64 { return r.Precipitation }),
		UVIndex:       optional(func(r Reading) *float64 { return r.UVIndex }),
	}

	temps := make([]float64, len(valid))
	winds := make([]float64, len(valid))
	hums := make([]float64, len(valid))
	dirs := make([]float64, len(valid))
	conds := make([]string, len(valid))
	descs := make([]string, 0, len(valid))
	for i, r := range valid {
		temps[i] = r.Temperature
		winds[i] = r.WindSpeed
		hums[i] = r.Humidity
		dirs[i] = r.WindDirection
		conds[i] = string(r.Condition)
		if r.Description != "" {
			descs = append(descs, r.Description)
		}
		c.Sources = append(c.Sources, r.Source)
	}

	c.TemperatureMin, c.TemperatureMax = minMax(temps)
	c.WindDirection = CircularMean(dirs, weights)

	mode, count := Mode(conds)
	c.Condition = Condition(mode)
	c.ConditionConfidence = float64(count) / float64(len(valid))
	c.Description, _ = Mode(descs)

	c.Confidence = e.opts.Confidence.Score(temps, winds, hums)
	c.Disagreements = e.disagreements(valid, c.TemperatureMin, c.TemperatureMax)

	log.Printf("DEBUG: consensus: %d/%d sources, strategy=%s, confidence=%.2f, disagreements=%d",
		c.SourcesUsed, c.SourcesTotal, c.Strategy, c.Confidence, len(c.Disagreements))
	return c, nil
}

func (e *ConsensusEngine) weight(source string) float64 {
	if e.opts.Strategy != StrategyWeighted {
		return 1
	}
	if w, ok := e.opts.Weights[strings.ToLower(source)]; ok {
		return w
	}
	return DefaultSourceWeight
}

func (e *ConsensusEngine) disagreements(valid []Reading, tMin, tMax float64) []Disagreement {
	out := []Disagreement{}

	if spread := tMax - tMin; spread > e.opts.TemperatureSpread {
		d := Disagreement{
			Field:       "temperature",
			Description: fmt.Sprintf("Temperature spread of %.1f°F across sources exceeds %.1f°F", spread, e.opts.TemperatureSpread),
		}
		for _, r := range valid {
			d.Values = append(d.Values, SourceValue{Source: r.Source, Value: r.Temperature})
		}
		out = append(out, d)
	}

	distinct := map[Condition]struct{}{}
	for _, r := range valid {
		distinct[r.Condition] = struct{}{}
	}
	if len(distinct) > 1 {
		names := make([]string, 0, len(distinct))
		for cond := range distinct {
			names = append(names, string(cond))
		}
		sort.Strings(names)
		d := Disagreement{
			Field:       "conditions",
			Description: fmt.Sprintf("Sources report %d different conditions: %s", len(distinct), strings.Join(names, ", ")),
		}
		for _, r := range valid {
			d.Values = append(d.Values, SourceValue{Source: r.Source, Condition: r.Condition})
		}
		out = append(out, d)
	}
	return out
}

// Score computes the overall agreement of temperature, wind speed and humidity.
func (p ConfidencePolicy) Score(temps, winds, hums []float64) float64 {
	n := len(temps)
	if n < 2 {
		return p.Insufficient
	}
	s := p.TemperatureWeight*p.agreement(CoefficientOfVariation(temps)) +
		p.WindWeight*p.agreement(CoefficientOfVariation(winds)) +
		p.HumidityWeight*p.agreement(CoefficientOfVariation(hums))

	if p.FullSourceCount > 0 {
		s *= math.Min(1, float64(n)/float64(p.FullSourceCount))
	}
	return math.Max(0, math.Min(1, s))
}

func (p ConfidencePolicy) agreement(cv float64) float64 {
	for _, t := range p.Tiers {
		if cv <= t.MaxCV {
			return t.Score
		}
	}
	return p.FloorScore
}

// ─── Math helpers ─────────────────────────────────────────────────────────────

type sample struct {
	value  float64
	weight float64
}

// weightedMean normalizes weights over the samples present. It is computed as
// an offset from the first sample so identical inputs reproduce exactly.
// A non-positive weight sum falls back to the unweighted mean.
func weightedMean(samples []sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	ref := samples[0].value
	var num, den float64
	for _, s := range samples {
		if s.weight <= 0 {
			continue
		}
		num += s.weight * (s.value - ref)
		den += s.weight
	}
	if den <= 0 {
		for _, s := range samples {
			num += s.value - ref
		}
		den = float64(len(samples))
	}
	return ref + num/den
}

// CircularMean averages angles in degrees as unit vectors and returns a value in [0,360).
// weights may be nil. Opposite angles that cancel out yield 0.
func CircularMean(degrees []float64, weights []float64) float64 {
	if len(degrees) == 0 {
		return 0
	}
	var x, y float64
	for i, d := range degrees {
		w := 1.0
		if weights != nil && i < len(weights) {
			w = weights[i]
		}
		rad := d * math.Pi / 180
		x += w * math.Cos(rad)
		y += w * math.Sin(rad)
	}
	if math.Abs(x) < 1e-12 && math.Abs(y) < 1e-12 {
		return 0
	}
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Mode returns the most frequent value and its count. Ties go to the first seen.
func Mode(values []string) (string, int) {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount
}

// CoefficientOfVariation returns stdev/|mean| using the sample standard deviation.
// It is 0 for fewer than two values or no spread, and +Inf for spread around a zero mean.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)-1))
	if std == 0 {
		return 0
	}
	if mean == 0 {
		return math.Inf(1)
	}
	return std / math.Abs(mean)
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
