package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultBackoff keeps retries well inside the collector's per-fetch timeout.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

var (
	errRateLimited    = errors.New("rate limited")
	errServerError    = errors.New("server error")
	errUnexpected     = errors.New("unexpected status code")
	errCircuitOpen    = errors.New("circuit breaker open")
	errNoHTTPClient   = errors.New("http client not configured")
	errInvalidConfig  = errors.New("invalid backoff configuration")
	errNotConfigured  = errors.New("api key not configured")
	errEmptyLocation  = errors.New("location is required")
	errClientResponse = errors.New("client error")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

func newHTTPConfig(client *http.Client) HTTPClientConfig {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return HTTPClientConfig{Client: client, Backoff: DefaultBackoff}
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. 4xx responses other than 429 are not retried.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %w: %d", errUnexpected, errClientResponse, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if errors.Is(err, errClientResponse) || ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func cleanLocation(location string) (string, error) {
	q := strings.TrimSpace(location)
	if q == "" {
		return "", errEmptyLocation
	}
	return q, nil
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

const (
	kphToMph  = 0.621371
	mmToInch  = 0.0393701
	kmToMeter = 1000.0
)
