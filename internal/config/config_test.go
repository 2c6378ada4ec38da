package config

import (
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// clearEnv blanks every key FromEnv reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY", "VISUAL_CROSSING_API_KEY", "GEOCODER_API_KEY",
		"OPENAI_API_KEY", "GROQ_API_KEY", "GEMINI_API_KEY", "LLM_PROVIDER",
		"OPENAI_MODEL", "GROQ_MODEL", "GEMINI_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS", "LLM_MAX_RETRIES",
		"FETCH_TIMEOUT", "REQUEST_TIMEOUT", "HTTP_TIMEOUT",
		"TEMP_ALERT_THRESHOLD_HIGH", "TEMP_ALERT_THRESHOLD_LOW", "WIND_ALERT_THRESHOLD", "PRECIPITATION_ALERT_THRESHOLD",
		"CONSENSUS_STRATEGY", "SOURCE_WEIGHTS", "DEFAULT_LOCATION", "MONITOR_LOCATIONS",
		"FETCH_INTERVAL", "STORE_MAX_HISTORY", "STORE_MAX_AGE", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLMProvider != "auto" || cfg.LLMTemperature != 0.4 || cfg.LLMMaxTokens != 2000 || cfg.LLMMaxRetries != 2 {
		t.Fatalf("unexpected narration defaults: %+v", cfg)
	}
	if cfg.FetchTimeout != 10*time.Second || cfg.RequestTimeout != 60*time.Second || cfg.FetchInterval != 15*time.Minute {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if cfg.Thresholds.TempHigh != 100 || cfg.Thresholds.TempLow != 0 || cfg.Thresholds.Wind != 50 || cfg.Thresholds.Precipitation != 2.0 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Thresholds)
	}
	if cfg.ConsensusStrategy != weather.StrategySimple || cfg.DefaultLocation != "New York, NY, USA" || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.MonitorLocations) != 0 || cfg.WeatherKeyCount() != 0 {
		t.Fatalf("expected no monitored locations or keys")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "ow")
	t.Setenv("GEOCODER_API_KEY", "geo")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("CONSENSUS_STRATEGY", "weighted")
	t.Setenv("SOURCE_WEIGHTS", "openweather=0.5, custom = 2")
	t.Setenv("MONITOR_LOCATIONS", "London, UK; Paris, FR ;")
	t.Setenv("TEMP_ALERT_THRESHOLD_HIGH", "95.5")
	t.Setenv("FETCH_INTERVAL", "5m")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLMProvider != "gemini" || cfg.WeatherKeyCount() != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := strings.Join(cfg.MonitorLocations, "|"); got != "London, UK|Paris, FR" {
		t.Fatalf("unexpected locations: %q", got)
	}
	if cfg.Thresholds.TempHigh != 95.5 || cfg.FetchInterval != 5*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}

	opts := cfg.Consensus()
	if opts.Strategy != weather.StrategyWeighted {
		t.Fatalf("expected weighted strategy, got %s", opts.Strategy)
	}
	if opts.Weights["openweather"] != 0.5 || opts.Weights["custom"] != 2 || opts.Weights["weatherapi"] != 0.9 {
		t.Fatalf("unexpected weights: %v", opts.Weights)
	}
	if weather.DefaultSourceWeights["openweather"] != 1.0 {
		t.Fatalf("default weight table was modified")
	}
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := map[string][2]string{
		"bad duration":     {"FETCH_TIMEOUT", "soon"},
		"bad float":        {"WIND_ALERT_THRESHOLD", "strong"},
		"unknown strategy": {"CONSENSUS_STRATEGY", "median"},
		"unknown provider": {"LLM_PROVIDER", "llama"},
		"bad weights":      {"SOURCE_WEIGHTS", "openweather"},
		"negative weight":  {"SOURCE_WEIGHTS", "openweather=-1"},
		"inverted temps":   {"TEMP_ALERT_THRESHOLD_LOW", "120"},
		"short interval":   {"FETCH_INTERVAL", "10s"},
		"bad port":         {"PORT", "http"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
