// Package workflow sequences collection, analysis and narration for a single
// request and reports per-stage status.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/narration"
	"github.com/i474232898/weather-consensus/internal/report"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// Collector fetches readings for a location.
type Collector interface {
	Collect(ctx context.Context, location string) (weather.CollectionResult, error)
}

// Narrator turns a report into narration. It must return a usable Result
// even when it also returns an error.
type Narrator interface {
	Narrate(ctx context.Context, rep report.Report, question string) (narration.Result, error)
}

// Recorder receives every finished result.
type Recorder interface {
	Save(res Result)
}

// Options configure an Orchestrator.
type Options struct {
	Policy          analysis.Policy
	DefaultLocation string
	// RequestTimeout bounds a whole request. Zero means no deadline beyond the caller's.
	RequestTimeout time.Duration
	Recorder       Recorder
	Now            func() time.Time
}

// Orchestrator runs requests. It holds no per-request state and is safe for
// concurrent use.
type Orchestrator struct {
	collector Collector
	engine    *weather.ConsensusEngine
	narrator  Narrator
	builder   *report.Builder
	opts      Options
}

// New creates an Orchestrator. A nil narrator always yields the templated narration.
func New(collector Collector, engine *weather.ConsensusEngine, narrator Narrator, opts Options) *Orchestrator {
	if engine == nil {
		engine = weather.NewConsensusEngine(weather.DefaultConsensusOptions())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy.SeverityBase == nil {
		opts.Policy = analysis.DefaultPolicy(analysis.DefaultThresholds())
	}
	return &Orchestrator{
		collector: collector,
		engine:    engine,
		narrator:  narrator,
		builder:   report.NewBuilder(opts.Now),
		opts:      opts,
	}
}

// run is the request-scoped state threaded through the stages.
type run struct {
	location string
	question string
	result   Result

	collection weather.CollectionResult
	report     report.Report
}

type step struct {
	stage  Stage
	active Status
	exec   func(ctx context.Context, r *run) error
}

func (o *Orchestrator) steps() []step {
	return []step{
		{stage: StageCollection, active: StatusCollecting, exec: o.collect},
		{stage: StageAnalysis, active: StatusAnalyzing, exec: o.analyze},
		{stage: StageNarration, active: StatusProcessing, exec: o.narrate},
	}
}

// Run executes one request. It never panics and always returns a Result;
// a failed stage stops the sequence and later stages stay pending.
func (o *Orchestrator) Run(ctx context.Context, location, question string) Result {
	start := time.Now()

	location = strings.TrimSpace(location)
	if location == "" {
		location = o.opts.DefaultLocation
	}
	question = strings.TrimSpace(question)
	if question == "" {
		question = DefaultQuestion
	}

	if o.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.RequestTimeout)
		defer cancel()
	}

	r := &run{
		location: location,
		question: question,
		result:   newResult(uuid.NewString()[:8], location, question, o.opts.Now()),
	}
	log.Printf("INFO: workflow %s: starting for %q", r.result.RequestID, location)

	success := true
	for _, s := range o.steps() {
		r.result.Stages[s.stage] = s.active
		if err := o.exec(ctx, s, r); err != nil {
			r.result.Stages[s.stage] = StatusFailed
			r.result.Errors = append(r.result.Errors, fmt.Sprintf("%s: %v", s.stage, err))
			log.Printf("ERROR: workflow %s: %s stage failed: %v", r.result.RequestID, s.stage, err)
			success = false
			break
		}
		r.result.Stages[s.stage] = StatusCompleted
	}

	r.result.Success = success
	if success {
		r.result.Message = "Weather analysis completed successfully"
	}
	r.result.ExecutionTime = time.Since(start)
	r.result.ExecutionMS = r.result.ExecutionTime.Milliseconds()

	log.Printf("INFO: workflow %s: finished success=%v in %s", r.result.RequestID, success, r.result.ExecutionTime)
	if o.opts.Recorder != nil {
		o.opts.Recorder.Save(r.result)
	}
	return r.result
}

func (o *Orchestrator) exec(ctx context.Context, s step, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			if s.stage == StageAnalysis {
				err = &analysis.AnalysisError{Op: "workflow", Err: err}
			}
			if r.result.Message == "" {
				r.result.Message = fmt.Sprintf("Unexpected failure during %s", s.stage)
			}
		}
	}()
	return s.exec(ctx, r)
}

// ─── Stages ───────────────────────────────────────────────────────────────────

func (o *Orchestrator) collect(ctx context.Context, r *run) error {
	if o.collector == nil {
		r.result.Message = "No weather API clients available. Check API key configuration."
		return weather.ErrNoProvidersAvailable
	}

	res, err := o.collector.Collect(ctx, r.location)
	r.collection = res
	r.result.Sources = Sources{
		Used:       res.SuccessCount(),
		Available:  res.Available,
		Configured: res.Configured,
		Details:    res.Attempts,
	}
	r.result.Errors = append(r.result.Errors, res.Errors...)
	r.result.RawPreview = preview(res.Readings)

	switch {
	case errors.Is(err, weather.ErrNoProvidersAvailable):
		r.result.Message = "No weather API clients available. Check API key configuration."
		return err
	case err != nil:
		r.result.Message = "Failed to collect weather data from any source"
		return err
	case res.SuccessCount() == 0:
		r.result.Message = "Failed to collect weather data from any source"
		return weather.ErrInsufficientData
	}
	return nil
}

func (o *Orchestrator) analyze(_ context.Context, r *run) error {
	readings := r.collection.Readings
	attempts := r.collection.All
	if len(attempts) == 0 {
		attempts = readings
	}

	// Errored attempts are skipped by the engine but counted in SourcesTotal.
	cons, err := o.engine.Compute(attempts)
	if err != nil {
		r.result.Message = "Analysis failed: no usable readings"
		return &analysis.AnalysisError{Op: "consensus", Err: err}
	}
	r.result.Consensus = &cons

	ins, err := analysis.Analyze(readings, o.opts.Policy)
	if err != nil {
		r.result.Message = "Analysis failed"
		return err
	}
	r.result.Insights = &ins

	alerts := analysis.GenerateAlerts(ins, o.opts.Policy)
	recs := analysis.Recommend(alerts, ins, o.opts.Policy)
	r.result.Alerts = alerts
	r.result.Recommendations = recs

	r.report = o.builder.Build(report.Input{
		Location:        r.location,
		Readings:        readings,
		Attempts:        attempts,
		Insights:        ins,
		Alerts:          alerts,
		Recommendations: recs,
	})
	r.result.Report = &r.report
	return nil
}

// narrate never fails the request; failures degrade to the templated narration.
func (o *Orchestrator) narrate(ctx context.Context, r *run) error {
	defer func() {
		if rec := recover(); rec != nil {
			res := narration.Fallback(r.report, r.question)
			r.result.Narration = &res
			r.result.Errors = append(r.result.Errors, fmt.Sprintf("%s: using fallback: panic: %v", StageNarration, rec))
		}
	}()

	if o.narrator == nil {
		res := narration.Fallback(r.report, r.question)
		r.result.Narration = &res
		return nil
	}

	res, err := o.narrator.Narrate(ctx, r.report, r.question)
	if err != nil {
		r.result.Errors = append(r.result.Errors, fmt.Sprintf("%s: using fallback: %v", StageNarration, err))
		if !res.Fallback {
			res = narration.Fallback(r.report, r.question)
		}
	}
	r.result.Narration = &res
	return nil
}
