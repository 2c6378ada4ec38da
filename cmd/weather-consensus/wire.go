package main

import (
	"net/http"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/config"
	"github.com/i474232898/weather-consensus/internal/narration"
	"github.com/i474232898/weather-consensus/internal/store"
	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/i474232898/weather-consensus/internal/weather/providers"
	"github.com/i474232898/weather-consensus/internal/workflow"
)

// deps is the wired object graph shared by the commands.
type deps struct {
	cfg          *config.AppConfig
	providers    []weather.Provider
	narrator     *narration.Narrator
	store        *store.MemoryStore
	orchestrator *workflow.Orchestrator
}

func buildDeps(cfg *config.AppConfig) *deps {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker).
	provs := providers.All(httpClient, providers.Keys{
		OpenWeather:    cfg.OpenWeatherAPIKey,
		WeatherAPI:     cfg.WeatherAPIKey,
		VisualCrossing: cfg.VisualCrossingAPIKey,
		Geocoder:       cfg.GeocoderAPIKey,
	})

	// LLM calls are bounded by the request timeout only.
	llmClient := &http.Client{Timeout: cfg.RequestTimeout}
	opts := narration.DefaultOptions()
	opts.Preferred = cfg.LLMProvider
	opts.Temperature = cfg.LLMTemperature
	opts.MaxTokens = cfg.LLMMaxTokens
	opts.MaxRetries = cfg.LLMMaxRetries
	narrator := narration.New([]narration.Generator{
		narration.NewOpenAI(llmClient, cfg.OpenAIAPIKey, cfg.OpenAIModel),
		narration.NewGroq(llmClient, cfg.GroqAPIKey, cfg.GroqModel),
		narration.NewGemini(llmClient, cfg.GeminiAPIKey, cfg.GeminiModel),
	}, opts)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	orch := workflow.New(
		weather.NewCollector(provs, cfg.FetchTimeout),
		weather.NewConsensusEngine(cfg.Consensus()),
		narrator,
		workflow.Options{
			Policy:          analysis.DefaultPolicy(cfg.Thresholds),
			DefaultLocation: cfg.DefaultLocation,
			RequestTimeout:  cfg.RequestTimeout,
			Recorder:        memStore,
		},
	)

	return &deps{
		cfg:          cfg,
		providers:    provs,
		narrator:     narrator,
		store:        memStore,
		orchestrator: orch,
	}
}
