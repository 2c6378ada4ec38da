package narration

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-consensus/internal/report"
)

const systemPrompt = `You are a professional weather analyst. Provide insights, recommendations, and answer user questions in JSON format.
RESPONSE FORMAT:
{
  "analysis": "Comprehensive weather analysis...",
  "recommendations": ["Recommendation 1", "Recommendation 2", ...],
  "answers": {"question_key": "Answer..."},
  "follow_up_questions": ["Question 1", "Question 2", ...],
  "confidence": 0.95
}`

const maxPromptRecommendations = 5

// SystemPrompt returns the instruction block sent with every narration call.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt embeds the formatted report, the question and the location.
func UserPrompt(rep report.Report, question string) string {
	if strings.TrimSpace(question) == "" {
		question = "Provide a general weather analysis."
	}
	return fmt.Sprintf("WEATHER REPORT DATA:\n%s\n\nUSER QUESTION: %s\nLOCATION: %s\n\nRespond in the JSON format specified by the system prompt.",
		FormatReport(rep), question, rep.Location)
}

// FormatReport renders the parts of a report a model needs as plain text.
func FormatReport(rep report.Report) string {
	rule := strings.Repeat("=", 60)
	ins := rep.DetailedAnalysis.Insights

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "WEATHER ANALYSIS REPORT - %s\n", rep.Location)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, rep.ExecutiveSummary)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "KEY METRICS:")
	fmt.Fprintf(&b, "- Temperature: %.1f°F (range %.1f to %.1f)\n", ins.Temperature.Avg, ins.Temperature.Min, ins.Temperature.Max)
	fmt.Fprintf(&b, "- Humidity: %.0f%%\n", ins.Humidity.Avg)
	fmt.Fprintf(&b, "- Wind: %.1f mph %s\n", ins.Wind.Avg, ins.Wind.PrimaryDirection)
	fmt.Fprintf(&b, "- Conditions: %s\n", ins.Conditions.Primary)
	fmt.Fprintf(&b, "- Severity: %s\n", ins.Severity.Level)
	fmt.Fprintf(&b, "- Total Alerts: %d", rep.AlertsSummary.Total)

	if len(rep.Recommendations) > 0 {
		fmt.Fprint(&b, "\n\nRECOMMENDATIONS:")
		for i, rec := range rep.Recommendations {
			if i == maxPromptRecommendations {
				break
			}
			fmt.Fprintf(&b, "\n- %s", rec)
		}
	}
	return b.String()
}
