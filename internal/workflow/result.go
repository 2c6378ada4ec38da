package workflow

import (
	"time"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/narration"
	"github.com/i474232898/weather-consensus/internal/report"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// Stage names one step of a request.
type Stage string

const (
	StageCollection Stage = "collection"
	StageAnalysis   Stage = "analysis"
	StageNarration  Stage = "narration"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageCollection, StageAnalysis, StageNarration}

// Status is the state of a single stage.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCollecting Status = "collecting"
	StatusAnalyzing  Status = "analyzing"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DefaultQuestion is used when the caller asks nothing specific.
const DefaultQuestion = "Provide a comprehensive weather analysis and recommendations"

const rawPreviewSize = 3

// Sources summarizes provider participation.
type Sources struct {
	Used       int                     `json:"used"`
	Available  int                     `json:"available"`
	Configured int                     `json:"configured"`
	Details    []weather.SourceAttempt `json:"details"`
}

// RawPreview is a compact view of one successful reading.
type RawPreview struct {
	Source      string            `json:"source"`
	Temperature float64           `json:"temperature"`
	Condition   weather.Condition `json:"conditions"`
	Humidity    float64           `json:"humidity"`
	WindSpeed   float64           `json:"wind_speed"`
}

// Result is the structured response to one request. Whatever stage it
// stopped at, everything produced before that point is kept.
type Result struct {
	Success   bool      `json:"success"`
	RequestID string    `json:"request_id"`
	Location  string    `json:"location"`
	Question  string    `json:"user_question"`
	Timestamp time.Time `json:"timestamp"`

	Stages        map[Stage]Status `json:"workflow_stages"`
	ExecutionTime time.Duration    `json:"-"`
	ExecutionMS   int64            `json:"execution_time_ms"`

	Sources         Sources            `json:"data_sources"`
	Consensus       *weather.Consensus `json:"consensus,omitempty"`
	Insights        *analysis.Insights `json:"insights,omitempty"`
	Alerts          []analysis.Alert   `json:"alerts"`
	Recommendations []string           `json:"recommendations"`
	Report          *report.Report     `json:"report,omitempty"`
	Narration       *narration.Result  `json:"llm_response,omitempty"`
	RawPreview      []RawPreview       `json:"raw_data_preview"`

	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

// FailedStage returns the stage that ended the request, if any.
func (r Result) FailedStage() (Stage, bool) {
	for _, s := range Stages {
		if r.Stages[s] == StatusFailed {
			return s, true
		}
	}
	return "", false
}

func newResult(id, location, question string, now time.Time) Result {
	stages := make(map[Stage]Status, len(Stages))
	for _, s := range Stages {
		stages[s] = StatusPending
	}
	return Result{
		RequestID:       id,
		Location:        location,
		Question:        question,
		Timestamp:       now,
		Stages:          stages,
		Alerts:          []analysis.Alert{},
		Recommendations: []string{},
		RawPreview:      []RawPreview{},
		Errors:          []string{},
	}
}

func preview(readings []weather.Reading) []RawPreview {
	n := len(readings)
	if n > rawPreviewSize {
		n = rawPreviewSize
	}
	out := make([]RawPreview, 0, n)
	for _, r := range readings[:n] {
		out = append(out, RawPreview{
			Source:      r.Source,
			Temperature: r.Temperature,
			Condition:   r.Condition,
			Humidity:    r.Humidity,
			WindSpeed:   r.WindSpeed,
		})
	}
	return out
}
