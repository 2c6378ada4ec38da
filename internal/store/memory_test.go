package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-consensus/internal/workflow"
)

func result(id, location string, ts time.Time) workflow.Result {
	return workflow.Result{RequestID: id, Location: location, Timestamp: ts, Success: true}
}

func TestSaveAndLatest(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Save(result("a1", "London, UK", base))
	s.Save(result("a2", "london ,uk", base.Add(time.Minute)))
	s.Save(result("b1", "Paris, FR", base))

	got, err := s.Latest("LONDON, UK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RequestID != "a2" {
		t.Fatalf("expected latest a2, got %s", got.RequestID)
	}

	if _, err := s.Latest("Berlin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	byID, err := s.ByID("b1")
	if err != nil || byID.Location != "Paris, FR" {
		t.Fatalf("unexpected ByID result: %+v (%v)", byID, err)
	}

	if locs := s.Locations(); len(locs) != 2 || locs[0] != "london:uk" || locs[1] != "paris:fr" {
		t.Fatalf("unexpected locations: %v", locs)
	}
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Now()

	s.Save(result("r1", "Oslo", base))
	s.Save(result("r2", "Oslo", base.Add(time.Second)))
	s.Save(result("r3", "Oslo", base.Add(2*time.Second)))

	if _, err := s.ByID("r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("evicted result should no longer be found by id")
	}
	rs, err := s.Range("Oslo", base, base.Add(time.Hour))
	if err != nil || len(rs) != 2 || rs[0].RequestID != "r2" {
		t.Fatalf("expected r2 and r3, got %+v (%v)", rs, err)
	}
}

func TestRetentionByAge(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.Save(result("old", "Rome", now.Add(-2*time.Hour)))
	s.Save(result("new", "Rome", now.Add(-time.Minute)))

	if _, err := s.ByID("old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old result to be dropped")
	}
	got, err := s.Latest("Rome")
	if err != nil || got.RequestID != "new" {
		t.Fatalf("expected new result, got %+v (%v)", got, err)
	}
}

func TestRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"h0", "h1", "h2", "h3"} {
		s.Save(result(id, "Lima", base.Add(time.Duration(i)*time.Hour)))
	}

	rs, err := s.Range("Lima", base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil || len(rs) != 2 || rs[0].RequestID != "h1" || rs[1].RequestID != "h2" {
		t.Fatalf("expected inclusive range h1..h2, got %+v (%v)", rs, err)
	}
	if _, err := s.Range("Lima", base.Add(10*time.Hour), base.Add(11*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
}

func TestStoreRecordsWorkflowResults(t *testing.T) {
	var _ workflow.Recorder = NewMemoryStore(0, 0)
}
