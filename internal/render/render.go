// Package render writes workflow results for the console, as tables or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/i474232898/weather-consensus/internal/workflow"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Render writes res to w in the specified format.
func Render(w io.Writer, res workflow.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, res)
	default:
		return renderTable(w, res)
	}
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, res workflow.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, res workflow.Result) error {
	status := "SUCCESS"
	if !res.Success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "Weather analysis for %s [%s] request %s (%d ms)\n", res.Location, status, res.RequestID, res.ExecutionMS)
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
	fmt.Fprintln(w)

	renderStages(w, res)
	renderSources(w, res)

	if res.Consensus != nil {
		renderConsensus(w, res.Consensus)
	}
	if len(res.Alerts) > 0 {
		renderAlerts(w, res)
	}
	if len(res.Recommendations) > 0 {
		section(w, "Recommendations")
		for _, r := range res.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
		fmt.Fprintln(w)
	}
	if res.Narration != nil {
		renderNarration(w, res)
	}
	if len(res.Errors) > 0 {
		section(w, "Errors")
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	return tw
}

func renderStages(w io.Writer, res workflow.Result) {
	tw := newTable(w, []string{"STAGE", "STATUS"})
	for _, s := range workflow.Stages {
		tw.Append([]string{string(s), strings.ToUpper(string(res.Stages[s]))})
	}
	tw.Render()
	fmt.Fprintln(w)
}

func renderSources(w io.Writer, res workflow.Result) {
	fmt.Fprintf(w, "Sources: %d used / %d available / %d configured\n", res.Sources.Used, res.Sources.Available, res.Sources.Configured)
	if len(res.Sources.Details) == 0 {
		fmt.Fprintln(w)
		return
	}
	tw := newTable(w, []string{"SOURCE", "OK", "LATENCY", "ERROR"})
	for _, a := range res.Sources.Details {
		ok := "yes"
		if !a.Success {
			ok = "no"
		}
		tw.Append([]string{a.Source, ok, a.Latency.Round(time.Millisecond).String(), a.Error})
	}
	tw.Render()
	fmt.Fprintln(w)
}

func renderConsensus(w io.Writer, c *weather.Consensus) {
	section(w, "Consensus")
	tw := newTable(w, []string{"FIELD", "VALUE"})
	tw.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	rows := [][]string{
		{"Temperature", fmt.Sprintf("%.1f°F (%.1f to %.1f)", c.Temperature, c.TemperatureMin, c.TemperatureMax)},
		{"Feels like", fmt.Sprintf("%.1f°F", c.FeelsLike)},
		{"Humidity", fmt.Sprintf("%.0f%%", c.Humidity)},
		{"Pressure", fmt.Sprintf("%.1f hPa", c.Pressure)},
		{"Wind", fmt.Sprintf("%.1f mph from %.0f°", c.WindSpeed, c.WindDirection)},
		{"Conditions", fmt.Sprintf("%s (%.0f%% agreement)", c.Condition, c.ConditionConfidence*100)},
		{"Confidence", fmt.Sprintf("%.2f", c.Confidence)},
		{"Strategy", string(c.Strategy)},
		{"Sources", fmt.Sprintf("%d of %d", c.SourcesUsed, c.SourcesTotal)},
	}
	if c.Precipitation != nil {
		rows = append(rows, []string{"Precipitation", fmt.Sprintf("%.2f in", *c.Precipitation)})
	}
	for _, r := range rows {
		tw.Append(r)
	}
	tw.Render()

	for _, d := range c.Disagreements {
		fmt.Fprintf(w, "  ! %s\n", d.Description)
	}
	fmt.Fprintln(w)
}

func renderAlerts(w io.Writer, res workflow.Result) {
	section(w, "Alerts")
	tw := newTable(w, []string{"SEVERITY", "TYPE", "MESSAGE"})
	for _, a := range res.Alerts {
		tw.Append([]string{strings.ToUpper(string(a.Severity)), a.Type, a.Message})
	}
	tw.Render()
	fmt.Fprintln(w)
}

func renderNarration(w io.Writer, res workflow.Result) {
	n := res.Narration
	title := "Analysis"
	if n.Provider != "" && !n.Fallback {
		title = fmt.Sprintf("Analysis (%s)", n.Provider)
	}
	section(w, title)
	fmt.Fprintln(w, n.Analysis)
	fmt.Fprintln(w)

	if len(n.Answers) > 0 {
		keys := make([]string, 0, len(n.Answers))
		for k := range n.Answers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tw := newTable(w, []string{"QUESTION", "ANSWER"})
		tw.SetAutoWrapText(true)
		for _, k := range keys {
			tw.Append([]string{k, n.Answers[k]})
		}
		tw.Render()
		fmt.Fprintln(w)
	}
	for _, q := range n.FollowUpQuestions {
		fmt.Fprintf(w, "  ? %s\n", q)
	}
}
