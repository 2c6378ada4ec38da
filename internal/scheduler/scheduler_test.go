package scheduler

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-consensus/internal/workflow"
)

type fakeRunner struct {
	mu        sync.Mutex
	locations []string
	deadlines int
}

func (f *fakeRunner) Run(ctx context.Context, location, _ string) workflow.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, location)
	if _, ok := ctx.Deadline(); ok {
		f.deadlines++
	}
	return workflow.Result{Success: location != "Nowhere", Location: location}
}

func TestRunOnceCoversEveryLocation(t *testing.T) {
	r := &fakeRunner{}
	s := New([]string{"London, UK", "Paris, FR", "Nowhere"}, 15*time.Minute, time.Second, r)

	s.RunOnce()

	sort.Strings(r.locations)
	if len(r.locations) != 3 || r.locations[0] != "London, UK" || r.locations[2] != "Paris, FR" {
		t.Fatalf("unexpected runs: %v", r.locations)
	}
	if r.deadlines != 3 {
		t.Fatalf("every run should carry a deadline, got %d", r.deadlines)
	}
}

func TestStartWithoutLocations(t *testing.T) {
	s := New(nil, time.Minute, 0, &fakeRunner{})
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}
