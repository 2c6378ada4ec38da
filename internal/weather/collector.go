package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultFetchTimeout bounds a single provider fetch.
const DefaultFetchTimeout = 10 * time.Second

// Collector fetches current weather from every available provider concurrently.
type Collector struct {
	providers []Provider
	timeout   time.Duration
}

// NewCollector creates a new Collector. A non-positive timeout falls back to DefaultFetchTimeout.
func NewCollector(providers []Provider, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Collector{
		providers: providers,
		timeout:   timeout,
	}
}

// Providers returns every configured provider, available or not.
func (c *Collector) Providers() []Provider {
	return c.providers
}

// AvailableCount returns how many providers have credentials configured.
func (c *Collector) AvailableCount() int {
	return len(availableProviders(c.providers))
}

// Collect runs Collect with the collector's providers and timeout.
func (c *Collector) Collect(ctx context.Context, location string) (CollectionResult, error) {
	return Collect(ctx, location, c.providers, c.timeout)
}

// Collect issues one fetch per available provider concurrently, each bounded by
// timeout, and waits for all of them. A failing provider yields an error-tagged
// reading and never aborts the others.
//
// It returns ErrNoProvidersAvailable when there was nothing to try and
// ErrInsufficientData when every attempt failed. The result is populated in both cases.
func Collect(ctx context.Context, location string, providers []Provider, timeout time.Duration) (CollectionResult, error) {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	available := availableProviders(providers)
	res := CollectionResult{
		Location:   location,
		Configured: len(providers),
		Available:  len(available),
	}

	log.Printf("DEBUG: collector: fetching %q from %d/%d providers", location, len(available), len(providers))
	if len(available) == 0 {
		log.Printf("ERROR: collector: no providers available to fetch weather data for %q", location)
		res.Errors = append(res.Errors, "No weather API clients available")
		return res, ErrNoProvidersAvailable
	}

	type slot struct {
		reading Reading
		latency time.Duration
	}

	// Each goroutine owns exactly one slot; nothing else is shared.
	slots := make([]slot, len(available))

	var wg sync.WaitGroup
	for i, p := range available {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			start := time.Now()
			r := fetchOne(ctx, p, location, timeout)
			slots[i] = slot{reading: r, latency: time.Since(start)}
		}(i, p)
	}
	wg.Wait()

	for _, s := range slots {
		r := s.reading
		res.All = append(res.All, r)

		attempt := SourceAttempt{
			Source:  r.Source,
			Latency: s.latency,
			Success: r.OK(),
			Error:   r.Error,
		}
		res.Attempts = append(res.Attempts, attempt)

		if !r.OK() {
			msg := fmt.Sprintf("%s: %s", r.Source, r.Error)
			log.Printf("collector: provider fetch failed for %q: %s", location, msg)
			res.Errors = append(res.Errors, msg)
			continue
		}
		res.Readings = append(res.Readings, r)
	}

	if len(res.Readings) == 0 {
		log.Printf("collector: no successful provider readings for %q", location)
		return res, fmt.Errorf("%w: all %d providers failed", ErrInsufficientData, len(available))
	}

	log.Printf("INFO: collector: %d/%d sources successful for %q", len(res.Readings), len(available), location)
	return res, nil
}

// fetchOne calls a single provider under its own deadline. The provider call
// is abandoned, not awaited, once the deadline passes; its context is
// cancelled so well-behaved clients stop retrying.
func fetchOne(ctx context.Context, p Provider, location string, timeout time.Duration) Reading {
	name := p.Name()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Reading, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- ErrorReading(name, location, fmt.Sprintf("Error: %v", rec))
			}
		}()

		r, err := p.Fetch(fetchCtx, location)
		if err != nil {
			done <- ErrorReading(name, location, describeFetchError(name, err))
			return
		}
		if r.Source == "" {
			r.Source = name
		}
		if r.Location == "" {
			r.Location = location
		}
		done <- r
	}()

	select {
	case r := <-done:
		return r
	case <-fetchCtx.Done():
		// Prefer a result that raced the deadline.
		select {
		case r := <-done:
			return r
		default:
		}
		err := &ProviderError{Source: name, Err: ErrProviderTimeout}
		if ctx.Err() != nil {
			err.Err = ctx.Err()
		}
		return ErrorReading(name, location, describeFetchError(name, err))
	}
}

func describeFetchError(source string, err error) string {
	switch {
	case errors.Is(err, ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Timeout fetching data from %s", source)
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("Request to %s cancelled", source)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
