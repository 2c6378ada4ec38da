package narration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/weather-consensus/internal/report"
)

// Result is the narration handed back to the caller, model-derived or templated.
type Result struct {
	Analysis          string            `json:"analysis"`
	Recommendations   []string          `json:"recommendations"`
	Answers           map[string]string `json:"answers"`
	FollowUpQuestions []string          `json:"follow_up_questions"`
	Confidence        float64           `json:"confidence"`
	Provider          string            `json:"provider,omitempty"`
	Fallback          bool              `json:"fallback"`
}

// Options tune generation and retry.
type Options struct {
	Preferred   string
	Temperature float64
	MaxTokens   int
	// MaxRetries is the number of extra attempts after the first.
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultOptions returns the stock generation and retry settings.
func DefaultOptions() Options {
	return Options{
		Preferred:   "auto",
		Temperature: 0.4,
		MaxTokens:   2000,
		MaxRetries:  2,
		Backoff:     1 * time.Second,
		MaxBackoff:  4 * time.Second,
	}
}

// Narrator narrates reports with the configured generators.
type Narrator struct {
	generators []Generator
	opts       Options
	perf       *performance
}

// New builds a Narrator, filling zero options from DefaultOptions.
func New(generators []Generator, opts Options) *Narrator {
	def := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = def.Backoff
	}
	if opts.MaxBackoff < opts.Backoff {
		opts.MaxBackoff = opts.Backoff
	}
	return &Narrator{generators: generators, opts: opts, perf: newPerformance()}
}

// Stats returns per-provider call counts and response times since start.
func (n *Narrator) Stats() map[string]ProviderStats {
	return n.perf.snapshot()
}

// Available reports whether any generator has credentials.
func (n *Narrator) Available() bool {
	for _, g := range n.generators {
		if g != nil && g.Available() {
			return true
		}
	}
	return false
}

// Providers lists available generators in priority order.
func (n *Narrator) Providers() []string {
	return NewSelection(n.generators, n.opts.Preferred).Names()
}

// Narrate always returns a usable Result. When the model path fails the
// Result is the templated fallback and the error says why.
func (n *Narrator) Narrate(ctx context.Context, rep report.Report, question string) (Result, error) {
	sel := NewSelection(n.generators, n.opts.Preferred)
	if sel.Current() == nil {
		return Fallback(rep, question), ErrNoGenerator
	}

	req := Request{
		System:      SystemPrompt(),
		User:        UserPrompt(rep, question),
		Temperature: n.opts.Temperature,
		MaxTokens:   n.opts.MaxTokens,
	}

	text, provider, err := n.generate(ctx, sel, req)
	if err != nil {
		log.Printf("ERROR: narration: falling back to template: %v", err)
		return Fallback(rep, question), err
	}

	res, err := ParseResponse(text)
	if err != nil {
		log.Printf("ERROR: narration: unparseable response from %s: %v", provider, err)
		return Fallback(rep, question), &Error{Provider: provider, Kind: KindDecode, Err: err}
	}
	res.Provider = provider
	return res, nil
}

// generate makes up to MaxRetries+1 attempts. After a failure the selection
// switches to the next provider when there is one, otherwise it backs off and
// retries the same provider.
func (n *Narrator) generate(ctx context.Context, sel *Selection, req Request) (string, string, error) {
	var errs []error
	attempts := n.opts.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		g := sel.Current()
		start := time.Now()
		text, err := g.Generate(ctx, req)
		n.perf.track(g.Name(), time.Since(start), err == nil)
		if err == nil {
			return text, g.Name(), nil
		}
		errs = append(errs, err)
		log.Printf("DEBUG: narration: attempt %d/%d with %s failed: %v", attempt+1, attempts, g.Name(), err)

		if ctx.Err() != nil {
			break
		}
		if sel.Next() {
			log.Printf("INFO: narration: switching from %s to %s", g.Name(), sel.Current().Name())
			continue
		}
		if !retryable(err) || attempt == attempts-1 {
			break
		}
		if err := sleep(ctx, n.backoff(attempt)); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return "", "", errors.Join(errs...)
}

func (n *Narrator) backoff(attempt int) time.Duration {
	d := n.opts.Backoff << attempt
	if d > n.opts.MaxBackoff || d <= 0 {
		return n.opts.MaxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fallback is the templated narration used when no model answer is available.
func Fallback(rep report.Report, question string) Result {
	recs := rep.Recommendations
	if len(recs) > maxPromptRecommendations {
		recs = recs[:maxPromptRecommendations]
	}

	answers := map[string]string{}
	q := strings.ToLower(question)
	if strings.Contains(q, "cold") {
		answers["temperature_concern"] = "Temperatures are low. Dress warmly."
	}
	if strings.Contains(q, "rain") {
		answers["precipitation_concern"] = "Precipitation expected. Carry waterproof gear."
	}

	return Result{
		Analysis:          fmt.Sprintf("Weather Analysis for %s:\n%s", rep.Location, rep.ExecutiveSummary),
		Recommendations:   append([]string{}, recs...),
		Answers:           answers,
		FollowUpQuestions: []string{},
		Confidence:        DefaultConfidence,
		Fallback:          true,
	}
}
