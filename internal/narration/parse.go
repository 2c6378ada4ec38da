package narration

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultConfidence is used when a model omits or garbles its confidence.
const DefaultConfidence = 0.7

var errNoJSON = errors.New("no JSON object in response")

// ExtractJSON returns the first balanced {...} object in text. Braces inside
// string literals are ignored.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

type rawResponse struct {
	Analysis          string          `json:"analysis"`
	Recommendations   []string        `json:"recommendations"`
	Answers           map[string]any  `json:"answers"`
	FollowUpQuestions []string        `json:"follow_up_questions"`
	Confidence        json.RawMessage `json:"confidence"`
}

// ParseResponse decodes a model response into a Result.
func ParseResponse(text string) (Result, error) {
	obj, ok := ExtractJSON(text)
	if !ok {
		return Result{}, errNoJSON
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	res := Result{
		Analysis:          raw.Analysis,
		Recommendations:   nonNil(raw.Recommendations),
		Answers:           make(map[string]string, len(raw.Answers)),
		FollowUpQuestions: nonNil(raw.FollowUpQuestions),
		Confidence:        DefaultConfidence,
	}
	for k, v := range raw.Answers {
		if s, ok := v.(string); ok {
			res.Answers[k] = s
			continue
		}
		res.Answers[k] = fmt.Sprint(v)
	}

	var c float64
	if len(raw.Confidence) > 0 && json.Unmarshal(raw.Confidence, &c) == nil && c >= 0 && c <= 1 {
		res.Confidence = c
	}
	return res, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
