package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/narration"
	"github.com/i474232898/weather-consensus/internal/report"
	"github.com/i474232898/weather-consensus/internal/weather"
)

type stubProvider struct {
	name      string
	available bool
	reading   weather.Reading
	err       error
}

func (p stubProvider) Name() string    { return p.name }
func (p stubProvider) Available() bool { return p.available }

func (p stubProvider) Fetch(_ context.Context, location string) (weather.Reading, error) {
	if p.err != nil {
		return weather.Reading{}, p.err
	}
	r := p.reading
	r.Source = p.name
	r.Location = location
	return r, nil
}

func okProvider(name string, temp float64) stubProvider {
	return stubProvider{name: name, available: true, reading: weather.Reading{
		Temperature: temp, FeelsLike: temp, Humidity: 50, Pressure: 1015,
		WindSpeed: 8, WindDirection: 180, Condition: weather.ConditionClear,
	}}
}

func failProvider(name string) stubProvider {
	return stubProvider{name: name, available: true, err: errors.New("503 service unavailable")}
}

type fakeNarrator struct {
	res   narration.Result
	err   error
	panic bool
	calls int
}

func (f *fakeNarrator) Narrate(_ context.Context, rep report.Report, question string) (narration.Result, error) {
	f.calls++
	if f.panic {
		panic("narrator exploded")
	}
	if f.err != nil {
		return narration.Fallback(rep, question), f.err
	}
	return f.res, nil
}

// stubCollector returns a fixed collection result.
type stubCollector struct{ res weather.CollectionResult }

func (c stubCollector) Collect(_ context.Context, location string) (weather.CollectionResult, error) {
	res := c.res
	res.Location = location
	return res, nil
}

type recorder struct{ saved []Result }

func (r *recorder) Save(res Result) { r.saved = append(r.saved, res) }

func newOrchestrator(n Narrator, rec Recorder, providers ...weather.Provider) *Orchestrator {
	return New(weather.NewCollector(providers, time.Second), nil, n, Options{
		DefaultLocation: "New York, NY, USA",
		Recorder:        rec,
		Now:             func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func TestRunAllSourcesSucceed(t *testing.T) {
	n := &fakeNarrator{res: narration.Result{Analysis: "Mild and clear", Provider: "openai", Confidence: 0.9}}
	rec := &recorder{}
	o := newOrchestrator(n, rec, okProvider("openweather", 71), okProvider("weatherapi", 72), okProvider("visualcrossing", 73))

	res := o.Run(context.Background(), "Boston, MA", "Should I bike today?")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	for _, s := range Stages {
		if res.Stages[s] != StatusCompleted {
			t.Fatalf("stage %s: expected completed, got %s", s, res.Stages[s])
		}
	}
	if len(res.RequestID) != 8 {
		t.Fatalf("expected 8 character request id, got %q", res.RequestID)
	}
	if res.Consensus == nil || res.Consensus.Temperature != 72 || res.Consensus.SourcesUsed != 3 {
		t.Fatalf("unexpected consensus: %+v", res.Consensus)
	}
	if res.Insights == nil || res.Report == nil {
		t.Fatalf("expected insights and report")
	}
	if res.Sources.Used != 3 || res.Sources.Available != 3 || len(res.Sources.Details) != 3 {
		t.Fatalf("unexpected sources: %+v", res.Sources)
	}
	if len(res.RawPreview) != 3 {
		t.Fatalf("expected 3 preview rows, got %d", len(res.RawPreview))
	}
	if res.Narration == nil || res.Narration.Provider != "openai" || res.Narration.Fallback {
		t.Fatalf("unexpected narration: %+v", res.Narration)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
	if len(rec.saved) != 1 || rec.saved[0].RequestID != res.RequestID {
		t.Fatalf("expected the result to be recorded")
	}
}

func TestRunPartialCollection(t *testing.T) {
	o := newOrchestrator(nil, nil, okProvider("openweather", 70), failProvider("weatherapi"), failProvider("visualcrossing"))

	res := o.Run(context.Background(), "Denver", "")

	if !res.Success {
		t.Fatalf("one good source should be enough: %+v", res)
	}
	if res.Consensus.SourcesUsed != 1 || res.Consensus.SourcesTotal != 3 {
		t.Fatalf("unexpected source counts: %+v", res.Consensus)
	}
	if res.Consensus.Confidence != 0.5 {
		t.Fatalf("single source consensus should score 0.5, got %g", res.Consensus.Confidence)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected two provider errors, got %v", res.Errors)
	}
	if res.Question != DefaultQuestion {
		t.Fatalf("expected default question, got %q", res.Question)
	}
	if res.Narration == nil || !res.Narration.Fallback {
		t.Fatalf("nil narrator should produce the templated narration")
	}
}

func TestRunAllSourcesFail(t *testing.T) {
	n := &fakeNarrator{}
	o := newOrchestrator(n, nil, failProvider("openweather"), failProvider("weatherapi"), failProvider("visualcrossing"))

	res := o.Run(context.Background(), "Nowhere", "")

	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Stages[StageCollection] != StatusFailed {
		t.Fatalf("expected failed collection, got %s", res.Stages[StageCollection])
	}
	if res.Stages[StageAnalysis] != StatusPending || res.Stages[StageNarration] != StatusPending {
		t.Fatalf("later stages should stay pending: %v", res.Stages)
	}
	if stage, ok := res.FailedStage(); !ok || stage != StageCollection {
		t.Fatalf("expected collection as failed stage, got %s", stage)
	}
	if res.Consensus != nil || res.Insights != nil || res.Narration != nil {
		t.Fatalf("no downstream output expected")
	}
	if n.calls != 0 {
		t.Fatalf("narrator should not run")
	}
	if res.Message != "Failed to collect weather data from any source" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	// Three provider errors plus the stage error.
	if len(res.Errors) != 4 || !strings.HasPrefix(res.Errors[3], "collection: ") {
		t.Fatalf("unexpected error log: %v", res.Errors)
	}
}

func TestRunNoProvidersAvailable(t *testing.T) {
	o := newOrchestrator(nil, nil, stubProvider{name: "openweather"})

	res := o.Run(context.Background(), "", "")

	if res.Success || res.Stages[StageCollection] != StatusFailed {
		t.Fatalf("expected failed collection: %+v", res)
	}
	if !strings.Contains(res.Message, "No weather API clients available") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if res.Location != "New York, NY, USA" {
		t.Fatalf("expected default location, got %q", res.Location)
	}
}

func TestRunNarrationFailureIsNotFatal(t *testing.T) {
	tests := map[string]*fakeNarrator{
		"error": {err: errors.New("all providers down")},
		"panic": {panic: true},
	}
	for name, n := range tests {
		t.Run(name, func(t *testing.T) {
			o := newOrchestrator(n, nil, okProvider("openweather", 40), okProvider("weatherapi", 41), okProvider("visualcrossing", 42))

			res := o.Run(context.Background(), "Chicago", "Is it cold?")

			if !res.Success || res.Stages[StageNarration] != StatusCompleted {
				t.Fatalf("narration failure must not fail the request: %+v", res.Stages)
			}
			if res.Narration == nil || !res.Narration.Fallback {
				t.Fatalf("expected fallback narration")
			}
			if res.Narration.Answers["temperature_concern"] == "" {
				t.Fatalf("expected keyword answer in fallback: %v", res.Narration.Answers)
			}
			if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "narration: using fallback") {
				t.Fatalf("unexpected errors: %v", res.Errors)
			}
		})
	}
}

func TestRunAnalysisFailure(t *testing.T) {
	good := okProvider("openweather", 70).reading
	good.Source = "openweather"
	// A collector that reports an errored reading as usable.
	bad := weather.ErrorReading("weatherapi", "Denver", "upstream returned garbage")
	collector := stubCollector{res: weather.CollectionResult{
		Readings:   []weather.Reading{bad},
		All:        []weather.Reading{good, bad},
		Attempts:   []weather.SourceAttempt{{Source: "openweather", Success: true}, {Source: "weatherapi", Success: true}},
		Configured: 2,
		Available:  2,
	}}
	n := &fakeNarrator{}
	rec := &recorder{}
	o := New(collector, nil, n, Options{Recorder: rec})

	res := o.Run(context.Background(), "Denver", "")

	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Stages[StageCollection] != StatusCompleted {
		t.Fatalf("collection should stay completed, got %s", res.Stages[StageCollection])
	}
	if res.Stages[StageAnalysis] != StatusFailed {
		t.Fatalf("expected failed analysis, got %s", res.Stages[StageAnalysis])
	}
	if res.Stages[StageNarration] != StatusPending {
		t.Fatalf("narration should stay pending, got %s", res.Stages[StageNarration])
	}
	if stage, ok := res.FailedStage(); !ok || stage != StageAnalysis {
		t.Fatalf("expected analysis as failed stage, got %s", stage)
	}
	if res.Sources.Used != 1 || res.Sources.Configured != 2 || len(res.Sources.Details) != 2 {
		t.Fatalf("collection output should be preserved: %+v", res.Sources)
	}
	if res.Consensus == nil || res.Consensus.Temperature != 70 {
		t.Fatalf("consensus should be preserved: %+v", res.Consensus)
	}
	if res.Insights != nil || res.Narration != nil {
		t.Fatalf("no insights or narration expected")
	}
	if n.calls != 0 {
		t.Fatalf("narrator should not run")
	}
	last := res.Errors[len(res.Errors)-1]
	if !strings.HasPrefix(last, "analysis: ") {
		t.Fatalf("expected an analysis error entry, got %v", res.Errors)
	}
	if res.Message != "Analysis failed" {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if len(rec.saved) != 1 || rec.saved[0].Success {
		t.Fatalf("failed result should still be recorded")
	}
}

func TestExecRecoversAnalysisPanic(t *testing.T) {
	o := New(stubCollector{}, nil, nil, Options{})
	r := &run{result: newResult("deadbeef", "Denver", DefaultQuestion, time.Now())}

	err := o.exec(context.Background(), step{
		stage:  StageAnalysis,
		active: StatusAnalyzing,
		exec:   func(context.Context, *run) error { panic("index out of range") },
	}, r)

	var ae *analysis.AnalysisError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *analysis.AnalysisError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "index out of range") {
		t.Fatalf("panic value should be kept: %v", err)
	}
	if r.result.Message != "Unexpected failure during analysis" {
		t.Fatalf("unexpected message: %q", r.result.Message)
	}
}
