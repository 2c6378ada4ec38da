package narration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
)

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewGemini creates a GeminiClient. An empty model selects DefaultGeminiModel.
func NewGemini(client *http.Client, apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		client:  defaultClient(client),
		circuit: newBreaker("gemini"),
	}
}

// WithBaseURL overrides the API endpoint.
func (g *GeminiClient) WithBaseURL(u string) *GeminiClient {
	g.baseURL = u
	return g
}

func (g *GeminiClient) Name() string    { return "gemini" }
func (g *GeminiClient) Available() bool { return g.apiKey != "" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if !g.Available() {
		return "", &Error{Provider: g.Name(), Kind: KindUnavailable, Err: errors.New("api key not configured")}
	}

	body := map[string]any{
		"contents": []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.User}}}},
		"generationConfig": map[string]any{
			"temperature":     req.Temperature,
			"maxOutputTokens": req.MaxTokens,
		},
	}
	if req.System != "" {
		body["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	var resp struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}

	u := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	if err := postJSON(ctx, g.client, g.circuit, g.Name(), u, nil, body, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if r := resp.PromptFeedback.BlockReason; r != "" {
			return "", &Error{Provider: g.Name(), Kind: KindEmpty, Err: fmt.Errorf("content blocked: %s", r)}
		}
		return "", &Error{Provider: g.Name(), Kind: KindEmpty, Err: errors.New("empty response")}
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &Error{Provider: g.Name(), Kind: KindEmpty, Err: errors.New("empty response")}
	}
	return sb.String(), nil
}
