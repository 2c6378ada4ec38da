package weather

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func reading(source string, temp, hum, wind float64, cond Condition) Reading {
	return Reading{
		Source:        source,
		Location:      "Boston",
		Temperature:   temp,
		FeelsLike:     temp,
		TempMin:       temp - 2,
		TempMax:       temp + 2,
		Humidity:      hum,
		Pressure:      1013,
		WindSpeed:     wind,
		WindDirection: 180,
		Condition:     cond,
	}
}

func TestConsensusIdenticalReadings(t *testing.T) {
	for _, strategy := range []Strategy{StrategySimple, StrategyWeighted} {
		engine := NewConsensusEngine(ConsensusOptions{Strategy: strategy})

		var readings []Reading
		for _, src := range []string{"openweather", "weatherapi", "visualcrossing", "openmeteo"} {
			r := reading(src, 61.7, 43.3, 7.1, ConditionClouds)
			r.CloudCover = Ptr(37.0)
			readings = append(readings, r)
		}

		c, err := engine.Compute(readings)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if c.Temperature != 61.7 || c.Humidity != 43.3 || c.WindSpeed != 7.1 || c.Pressure != 1013 {
			t.Fatalf("%s: means drifted from identical input: %+v", strategy, c)
		}
		if c.CloudCover == nil || *c.CloudCover != 37.0 {
			t.Fatalf("%s: expected cloud cover 37, got %v", strategy, c.CloudCover)
		}
		if c.Confidence < 0.9 {
			t.Fatalf("%s: expected confidence >= 0.9, got %.3f", strategy, c.Confidence)
		}
		if len(c.Disagreements) != 0 {
			t.Fatalf("%s: expected no disagreements, got %+v", strategy, c.Disagreements)
		}
		if c.Condition != ConditionClouds || c.ConditionConfidence != 1 {
			t.Fatalf("%s: expected unanimous Clouds, got %s (%.2f)", strategy, c.Condition, c.ConditionConfidence)
		}
	}
}

func TestConsensusEmptyInput(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())

	if _, err := engine.Compute(nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	onlyErrors := []Reading{ErrorReading("openweather", "Boston", "boom")}
	if _, err := engine.Compute(onlyErrors); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for errored-only input, got %v", err)
	}
}

func TestConsensusIgnoresErroredReadings(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())

	readings := []Reading{
		reading("openweather", 70, 50, 10, ConditionClear),
		ErrorReading("weatherapi", "Boston", "Timeout fetching data from weatherapi"),
		ErrorReading("openmeteo", "Boston", "Error: bad status"),
	}
	c, err := engine.Compute(readings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Temperature != 70 {
		t.Fatalf("expected single-source mean 70, got %v", c.Temperature)
	}
	if c.Confidence != 0.5 {
		t.Fatalf("expected default confidence 0.5, got %v", c.Confidence)
	}
	if c.SourcesUsed != 1 || c.SourcesTotal != 3 {
		t.Fatalf("expected 1/3 sources, got %d/%d", c.SourcesUsed, c.SourcesTotal)
	}
}

func TestConsensusTemperatureDisagreement(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())

	c, err := engine.Compute([]Reading{
		reading("a", 70, 50, 10, ConditionClear),
		reading("b", 74, 50, 10, ConditionClear),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Disagreements) != 0 {
		t.Fatalf("spread of 4 should not be flagged, got %+v", c.Disagreements)
	}

	c, err = engine.Compute([]Reading{
		reading("a", 70, 50, 10, ConditionClear),
		reading("b", 76, 50, 10, ConditionClear),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Disagreements) != 1 || c.Disagreements[0].Field != "temperature" {
		t.Fatalf("expected one temperature disagreement, got %+v", c.Disagreements)
	}
	vals := c.Disagreements[0].Values
	if len(vals) != 2 || vals[0].Source != "a" || vals[0].Value != 70 || vals[1].Source != "b" || vals[1].Value != 76 {
		t.Fatalf("unexpected per-source values: %+v", vals)
	}
	if c.TemperatureMin != 70 || c.TemperatureMax != 76 {
		t.Fatalf("expected verbatim bounds 70/76, got %v/%v", c.TemperatureMin, c.TemperatureMax)
	}
}

func TestConsensusConditionMode(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())

	c, err := engine.Compute([]Reading{
		reading("a", 70, 50, 10, ConditionRain),
		reading("b", 70, 50, 10, ConditionClouds),
		reading("c", 70, 50, 10, ConditionClouds),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Condition != ConditionClouds {
		t.Fatalf("expected Clouds, got %s", c.Condition)
	}
	if !approxEqual(c.ConditionConfidence, 2.0/3.0, 1e-9) {
		t.Fatalf("expected condition confidence 2/3, got %v", c.ConditionConfidence)
	}
	if len(c.Disagreements) != 1 || c.Disagreements[0].Field != "conditions" {
		t.Fatalf("expected one conditions disagreement, got %+v", c.Disagreements)
	}
}

func TestModeTieGoesToFirstSeen(t *testing.T) {
	got, n := Mode([]string{"Rain", "Clear", "Clear", "Rain"})
	if got != "Rain" || n != 2 {
		t.Fatalf("expected Rain x2, got %s x%d", got, n)
	}
}

func TestCircularMeanWraparound(t *testing.T) {
	got := CircularMean([]float64{350, 10}, nil)
	if !(approxEqual(got, 0, 1e-6) || approxEqual(got, 360, 1e-6)) {
		t.Fatalf("expected ~0 degrees, got %v", got)
	}

	got = CircularMean([]float64{80, 100}, nil)
	if !approxEqual(got, 90, 1e-6) {
		t.Fatalf("expected 90 degrees, got %v", got)
	}

	got = CircularMean([]float64{270, 300}, nil)
	if got < 0 || got >= 360 || !approxEqual(got, 285, 1e-6) {
		t.Fatalf("expected 285 degrees in [0,360), got %v", got)
	}
}

func TestConsensusWindDirectionUsesCircularMean(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())

	a := reading("a", 70, 50, 10, ConditionClear)
	a.WindDirection = 350
	b := reading("b", 70, 50, 10, ConditionClear)
	b.WindDirection = 10

	c, err := engine.Compute([]Reading{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(approxEqual(c.WindDirection, 0, 1e-6) || approxEqual(c.WindDirection, 360, 1e-6)) {
		t.Fatalf("expected wind direction ~0, got %v", c.WindDirection)
	}
}

func TestConsensusWeightedMean(t *testing.T) {
	engine := NewConsensusEngine(ConsensusOptions{
		Strategy: StrategyWeighted,
		Weights:  map[string]float64{"a": 3, "b": 1},
	})

	c, err := engine.Compute([]Reading{
		reading("a", 60, 50, 10, ConditionClear),
		reading("b", 80, 50, 10, ConditionClear),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(c.Temperature, 65, 1e-9) {
		t.Fatalf("expected weighted mean 65, got %v", c.Temperature)
	}
}

func TestConsensusMissingOptionalExcludedFromWeights(t *testing.T) {
	engine := NewConsensusEngine(ConsensusOptions{
		Strategy: StrategyWeighted,
		Weights:  map[string]float64{"a": 1, "b": 1, "c": 1},
	})

	a := reading("a", 70, 50, 10, ConditionClear)
	a.UVIndex = Ptr(4.0)
	b := reading("b", 70, 50, 10, ConditionClear)
	b.UVIndex = Ptr(6.0)
	c := reading("c", 70, 50, 10, ConditionClear)

	res, err := engine.Compute([]Reading{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UVIndex == nil || !approxEqual(*res.UVIndex, 5, 1e-9) {
		t.Fatalf("expected UV 5 from two reporting sources, got %v", res.UVIndex)
	}
	if res.Precipitation != nil {
		t.Fatalf("expected nil precipitation when no source reports it, got %v", *res.Precipitation)
	}
}

func TestConsensusEndToEndScenario(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())

	c, err := engine.Compute([]Reading{
		reading("openweather", 70, 45, 8, ConditionClear),
		reading("weatherapi", 72, 50, 10, ConditionClear),
		reading("openmeteo", 74, 55, 12, ConditionClear),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(c.Temperature, 72, 1e-9) {
		t.Fatalf("expected 72, got %v", c.Temperature)
	}
	if c.Confidence <= 0.8 {
		t.Fatalf("expected confidence > 0.8, got %v", c.Confidence)
	}
	if len(c.Disagreements) != 0 {
		t.Fatalf("expected no disagreements, got %+v", c.Disagreements)
	}
}

func TestConfidenceScaledBySourceCount(t *testing.T) {
	p := DefaultConfidencePolicy()

	two := p.Score([]float64{70, 70}, []float64{10, 10}, []float64{50, 50})
	three := p.Score([]float64{70, 70, 70}, []float64{10, 10, 10}, []float64{50, 50, 50})
	if !approxEqual(two, 2.0/3.0, 1e-9) {
		t.Fatalf("expected 2/3 for two agreeing sources, got %v", two)
	}
	if three != 1 {
		t.Fatalf("expected 1 for three agreeing sources, got %v", three)
	}

	noisy := p.Score([]float64{40, 70, 100}, []float64{1, 10, 30}, []float64{10, 50, 90})
	if noisy >= three {
		t.Fatalf("expected noisy input to score lower, got %v", noisy)
	}
}

// Fewer than three sources cap confidence even when they agree exactly.
func TestConsensusFewIdenticalSources(t *testing.T) {
	engine := NewConsensusEngine(DefaultConsensusOptions())
	tests := []struct {
		sources []string
		want    float64
	}{
		{[]string{"openweather"}, 0.5},
		{[]string{"openweather", "weatherapi"}, 2.0 / 3.0},
		{[]string{"openweather", "weatherapi", "visualcrossing"}, 1},
	}
	for _, tt := range tests {
		var readings []Reading
		for _, src := range tt.sources {
			readings = append(readings, reading(src, 70, 50, 10, ConditionClear))
		}
		c, err := engine.Compute(readings)
		if err != nil {
			t.Fatalf("%d sources: unexpected error: %v", len(tt.sources), err)
		}
		if !approxEqual(c.Confidence, tt.want, 1e-9) {
			t.Fatalf("%d sources: expected confidence %.3f, got %.3f", len(tt.sources), tt.want, c.Confidence)
		}
		if c.Temperature != 70 || len(c.Disagreements) != 0 {
			t.Fatalf("%d sources: unexpected consensus %+v", len(tt.sources), c)
		}
	}
}

func TestCoefficientOfVariationZeroMean(t *testing.T) {
	if cv := CoefficientOfVariation([]float64{0, 0, 0}); cv != 0 {
		t.Fatalf("expected 0 for constant zero series, got %v", cv)
	}
	if cv := CoefficientOfVariation([]float64{-5, 5}); !math.IsInf(cv, 1) {
		t.Fatalf("expected +Inf for spread around zero mean, got %v", cv)
	}
}
