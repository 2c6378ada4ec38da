package weather

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubProvider struct {
	name      string
	available bool
	delay     time.Duration
	reading   Reading
	err       error
	panicMsg  string
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }

func (s *stubProvider) Fetch(ctx context.Context, location string) (Reading, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Reading{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Reading{}, s.err
	}
	r := s.reading
	r.Source = s.name
	return r, nil
}

func okProvider(name string, temp float64) *stubProvider {
	return &stubProvider{
		name:      name,
		available: true,
		reading:   Reading{Location: "Boston", Temperature: temp, Humidity: 50, WindSpeed: 10, Condition: ConditionClear},
	}
}

func TestCollectAllSucceed(t *testing.T) {
	providers := []Provider{okProvider("a", 70), okProvider("b", 72), okProvider("c", 74)}

	res, err := Collect(context.Background(), "Boston", providers, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SuccessCount() != 3 || len(res.Errors) != 0 {
		t.Fatalf("expected 3 readings and no errors, got %d / %v", res.SuccessCount(), res.Errors)
	}
	if len(res.Attempts) != 3 || res.Available != 3 || res.Configured != 3 {
		t.Fatalf("unexpected attempt bookkeeping: %+v", res)
	}
}

func TestCollectPartialFailure(t *testing.T) {
	providers := []Provider{
		okProvider("openweather", 70),
		&stubProvider{name: "weatherapi", available: true, err: errors.New("status 500")},
		&stubProvider{name: "openmeteo", available: true, delay: time.Second},
	}

	res, err := Collect(context.Background(), "Boston", providers, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SuccessCount() != 1 || res.Readings[0].Source != "openweather" {
		t.Fatalf("expected only openweather to succeed, got %+v", res.Readings)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 error messages, got %v", res.Errors)
	}
	if len(res.All) != 3 {
		t.Fatalf("expected one reading per attempt, got %d", len(res.All))
	}

	var sawTimeout, sawError bool
	for _, msg := range res.Errors {
		if msg == "openmeteo: Timeout fetching data from openmeteo" {
			sawTimeout = true
		}
		if strings.HasPrefix(msg, "weatherapi: Error: status 500") {
			sawError = true
		}
	}
	if !sawTimeout || !sawError {
		t.Fatalf("expected source-qualified timeout and error messages, got %v", res.Errors)
	}
}

func TestCollectRecoversProviderPanic(t *testing.T) {
	providers := []Provider{
		okProvider("a", 70),
		&stubProvider{name: "b", available: true, panicMsg: "nil map"},
	}

	res, err := Collect(context.Background(), "Boston", providers, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SuccessCount() != 1 || len(res.Errors) != 1 {
		t.Fatalf("expected panic isolated to one provider, got %+v", res)
	}
}

func TestCollectNoProvidersAvailable(t *testing.T) {
	providers := []Provider{&stubProvider{name: "a", available: false}}

	res, err := Collect(context.Background(), "Boston", providers, time.Second)
	if !errors.Is(err, ErrNoProvidersAvailable) {
		t.Fatalf("expected ErrNoProvidersAvailable, got %v", err)
	}
	if errors.Is(err, ErrInsufficientData) {
		t.Fatalf("nothing-to-try must be distinct from all-failed")
	}
	if len(res.Errors) == 0 || res.Configured != 1 || res.Available != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCollectAllProvidersFail(t *testing.T) {
	providers := []Provider{
		&stubProvider{name: "a", available: true, err: errors.New("down")},
		&stubProvider{name: "b", available: true, err: errors.New("down")},
	}

	res, err := Collect(context.Background(), "Boston", providers, time.Second)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if len(res.Errors) != 2 || res.SuccessCount() != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCollectorSkipsUnavailable(t *testing.T) {
	c := NewCollector([]Provider{okProvider("a", 70), &stubProvider{name: "b"}}, 0)
	if c.AvailableCount() != 1 {
		t.Fatalf("expected 1 available provider, got %d", c.AvailableCount())
	}

	res, err := c.Collect(context.Background(), "Boston")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("unavailable providers must not be attempted, got %+v", res.Attempts)
	}
}
