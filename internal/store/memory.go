package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/i474232898/weather-consensus/internal/workflow"
)

var (
	// ErrNotFound is returned when no result is available for a location or request id.
	ErrNotFound = errors.New("no analysis result found")
)

// History holds a time-ordered list of results for a location.
type History struct {
	Results []workflow.Result
}

// MemoryStore is a concurrency-safe in-memory store of finished workflow results.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*History
	// key: request id
	byID map[string]workflow.Result

	// retention configuration
	maxHistory int           // max number of results per location
	maxAge     time.Duration // optional max age for results

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*History),
		byID:       make(map[string]workflow.Result),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func locationKey(location string) string {
	return weather.ParseLocation(location).Key()
}

// Save appends a result for its location and enforces retention.
func (s *MemoryStore) Save(res workflow.Result) {
	key := locationKey(res.Location)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &History{}
		s.data[key] = history
	}

	history.Results = append(history.Results, res)
	s.byID[res.RequestID] = res

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		s.evict(history.Results[:over])
		history.Results = history.Results[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results); i++ {
			if !history.Results[i].Timestamp.Before(cutoff) {
				break
			}
		}
		s.evict(history.Results[:i])
		history.Results = history.Results[i:]
	}

	if len(history.Results) == 0 {
		delete(s.data, key)
	}
}

func (s *MemoryStore) evict(results []workflow.Result) {
	for _, r := range results {
		delete(s.byID, r.RequestID)
	}
}

// Latest returns the most recent result for a location.
func (s *MemoryStore) Latest(location string) (workflow.Result, error) {
	key := locationKey(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Results) == 0 {
		return workflow.Result{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// ByID returns the result for a request id.
func (s *MemoryStore) ByID(id string) (workflow.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.byID[id]
	if !ok {
		return workflow.Result{}, ErrNotFound
	}
	return res, nil
}

// Range returns all results for a location between from and to (inclusive).
func (s *MemoryStore) Range(location string, from, to time.Time) ([]workflow.Result, error) {
	key := locationKey(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}

	var result []workflow.Result
	for _, r := range history.Results {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Locations lists the location keys that have stored results.
func (s *MemoryStore) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
