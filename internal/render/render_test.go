package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/narration"
	"github.com/i474232898/weather-consensus/internal/render"
	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/i474232898/weather-consensus/internal/workflow"
)

func sampleResult() workflow.Result {
	return workflow.Result{
		Success:   true,
		RequestID: "1a2b3c4d",
		Location:  "Denver, CO",
		Stages: map[workflow.Stage]workflow.Status{
			workflow.StageCollection: workflow.StatusCompleted,
			workflow.StageAnalysis:   workflow.StatusCompleted,
			workflow.StageNarration:  workflow.StatusCompleted,
		},
		Sources: workflow.Sources{
			Used: 2, Available: 3, Configured: 4,
			Details: []weather.SourceAttempt{
				{Source: "openweather", Success: true},
				{Source: "weatherapi", Success: false, Error: "Timeout fetching data from weatherapi"},
			},
		},
		Consensus: &weather.Consensus{
			Strategy:    weather.StrategySimple,
			Temperature: 72, TemperatureMin: 70, TemperatureMax: 76,
			Condition:   weather.ConditionClear,
			Confidence:  0.94,
			SourcesUsed: 2, SourcesTotal: 3,
			Disagreements: []weather.Disagreement{{Field: "temperature", Description: "Temperature spread of 6.0°F across sources exceeds 5.0°F"}},
		},
		Alerts: []analysis.Alert{
			{Severity: analysis.AlertHigh, Type: "wind", Message: "High winds expected"},
		},
		Recommendations: []string{"Secure loose outdoor objects"},
		Narration: &narration.Result{
			Analysis: "Breezy and clear.",
			Answers:  map[string]string{"jacket": "Bring a light one."},
			Provider: "groq",
		},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := render.Render(&buf, sampleResult(), render.FormatTable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Weather analysis for Denver, CO [SUCCESS] request 1a2b3c4d",
		"collection",
		"COMPLETED",
		"Sources: 2 used / 3 available / 4 configured",
		"Timeout fetching data from weatherapi",
		"72.0°F (70.0 to 76.0)",
		"! Temperature spread of 6.0°F",
		"High winds expected",
		"- Secure loose outdoor objects",
		"Analysis (groq)",
		"Bring a light one.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailedResult(t *testing.T) {
	res := workflow.Result{
		RequestID: "deadbeef",
		Location:  "Nowhere",
		Stages: map[workflow.Stage]workflow.Status{
			workflow.StageCollection: workflow.StatusFailed,
			workflow.StageAnalysis:   workflow.StatusPending,
			workflow.StageNarration:  workflow.StatusPending,
		},
		Errors:  []string{"collection: insufficient data"},
		Message: "Failed to collect weather data from any source",
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, res, render.FormatTable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[FAILED]", "FAILED", "PENDING", "Failed to collect weather data", "collection: insufficient data"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Consensus") {
		t.Fatalf("failed result should not render a consensus section")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render.Render(&buf, sampleResult(), render.FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["request_id"] != "1a2b3c4d" {
		t.Fatalf("unexpected request id: %v", decoded["request_id"])
	}
	stages, ok := decoded["workflow_stages"].(map[string]any)
	if !ok || stages["narration"] != "completed" {
		t.Fatalf("unexpected stages: %v", decoded["workflow_stages"])
	}
}
