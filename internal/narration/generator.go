// Package narration turns a weather report into prose and answers using a
// text-generation provider, falling back to a templated summary.
package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Request is one text-generation call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Generator is a text-generation capability.
type Generator interface {
	Name() string
	// Available reports whether the generator has the credentials it needs.
	Available() bool
	Generate(ctx context.Context, req Request) (string, error)
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "narration-" + name,
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Minute,
	})
}

// postJSON sends body as JSON through the breaker and decodes a 2xx response into out.
func postJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Provider: provider, Kind: KindDecode, Err: err}
	}

	_, err = cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, &Error{Provider: provider, Kind: KindTransport, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, &Error{Provider: provider, Kind: KindTransport, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, &Error{Provider: provider, Kind: KindStatus, Status: resp.StatusCode, Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, &Error{Provider: provider, Kind: KindDecode, Err: err}
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Provider: provider, Kind: KindUnavailable, Err: err}
	}
	return err
}

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 30 * time.Second}
	}
	return client
}
