package narration

import (
	"sync"
	"time"
)

// ProviderStats summarizes the calls made to one narration provider.
type ProviderStats struct {
	Calls               int           `json:"total_calls"`
	Successes           int           `json:"successful_calls"`
	Failures            int           `json:"failed_calls"`
	TotalTime           time.Duration `json:"total_time_ns"`
	AverageResponseTime time.Duration `json:"avg_response_time_ns"`
}

// performance accumulates ProviderStats across requests. Safe for concurrent use.
type performance struct {
	mu    sync.Mutex
	stats map[string]*ProviderStats
}

func newPerformance() *performance {
	return &performance{stats: map[string]*ProviderStats{}}
}

func (p *performance) track(provider string, elapsed time.Duration, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, found := p.stats[provider]
	if !found {
		s = &ProviderStats{}
		p.stats[provider] = s
	}
	s.Calls++
	s.TotalTime += elapsed
	if ok {
		s.Successes++
	} else {
		s.Failures++
	}
	s.AverageResponseTime = s.TotalTime / time.Duration(s.Calls)
}

func (p *performance) snapshot() map[string]ProviderStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]ProviderStats, len(p.stats))
	for name, s := range p.stats {
		out[name] = *s
	}
	return out
}
