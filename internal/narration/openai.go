package narration

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
)

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-4o"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultGeminiModel = "gemini-1.5-pro"
)

// ChatClient speaks the OpenAI chat-completions protocol. Groq exposes the
// same protocol under a different base URL.
type ChatClient struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenAI creates a ChatClient for OpenAI.
func NewOpenAI(client *http.Client, apiKey, model string) *ChatClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return newChatClient("openai", "https://api.openai.com/v1/chat/completions", client, apiKey, model)
}

// NewGroq creates a ChatClient for Groq.
func NewGroq(client *http.Client, apiKey, model string) *ChatClient {
	if model == "" {
		model = DefaultGroqModel
	}
	return newChatClient("groq", "https://api.groq.com/openai/v1/chat/completions", client, apiKey, model)
}

func newChatClient(name, baseURL string, client *http.Client, apiKey, model string) *ChatClient {
	return &ChatClient{
		name:    name,
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  defaultClient(client),
		circuit: newBreaker(name),
	}
}

// WithBaseURL overrides the API endpoint.
func (c *ChatClient) WithBaseURL(u string) *ChatClient {
	c.baseURL = u
	return c
}

func (c *ChatClient) Name() string    { return c.name }
func (c *ChatClient) Available() bool { return c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *ChatClient) Generate(ctx context.Context, req Request) (string, error) {
	if !c.Available() {
		return "", &Error{Provider: c.name, Kind: KindUnavailable, Err: errors.New("api key not configured")}
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
	}
	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.client, c.circuit, c.name, c.baseURL, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &Error{Provider: c.name, Kind: KindEmpty, Err: errors.New("empty completion")}
	}
	return resp.Choices[0].Message.Content, nil
}
