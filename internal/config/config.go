package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/weather"
)

type AppConfig struct {
	// Weather provider credentials.
	OpenWeatherAPIKey    string
	WeatherAPIKey        string
	VisualCrossingAPIKey string
	GeocoderAPIKey       string

	// Narration provider credentials and tuning.
	OpenAIAPIKey   string
	GroqAPIKey     string
	GeminiAPIKey   string
	LLMProvider    string  `validate:"oneof=auto openai groq gemini"`
	OpenAIModel    string
	GroqModel      string
	GeminiModel    string
	LLMTemperature float64 `validate:"gte=0,lte=2"`
	LLMMaxTokens   int     `validate:"gt=0"`
	LLMMaxRetries  int     `validate:"gte=0,lte=5"`

	FetchTimeout   time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
	HTTPTimeout    time.Duration `validate:"gt=0"`

	Thresholds        analysis.Thresholds
	ConsensusStrategy weather.Strategy `validate:"oneof=simple weighted"`
	SourceWeights     map[string]float64

	DefaultLocation string `validate:"required"`
	// MonitorLocations are fetched periodically by the scheduler.
	MonitorLocations []string
	// FetchInterval controls how often monitored locations are refreshed.
	FetchInterval time.Duration `validate:"gte=1m"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // results kept per location (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of results (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// Load reads configuration from .env and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds and validates the configuration from environment variables only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:        os.Getenv("WEATHERAPI_API_KEY"),
		VisualCrossingAPIKey: os.Getenv("VISUAL_CROSSING_API_KEY"),
		GeocoderAPIKey:       os.Getenv("GEOCODER_API_KEY"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LLMProvider:  strings.ToLower(getenvDefault("LLM_PROVIDER", "auto")),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		GroqModel:    os.Getenv("GROQ_MODEL"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
		LLMMaxTokens: getenvInt("LLM_MAX_TOKENS", 2000),

		LLMMaxRetries:     getenvInt("LLM_MAX_RETRIES", 2),
		ConsensusStrategy: weather.Strategy(strings.ToLower(getenvDefault("CONSENSUS_STRATEGY", string(weather.StrategySimple)))),
		DefaultLocation:   getenvDefault("DEFAULT_LOCATION", "New York, NY, USA"),
		MonitorLocations:  splitLocations(os.Getenv("MONITOR_LOCATIONS")),

		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 96), // roughly 24h at 15-minute intervals
		Port:            getenvDefault("PORT", "8080"),
	}

	var err error
	if cfg.LLMTemperature, err = getenvFloat("LLM_TEMPERATURE", 0.4); err != nil {
		return nil, err
	}

	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", weather.DefaultFetchTimeout); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	th := analysis.DefaultThresholds()
	if th.TempHigh, err = getenvFloat("TEMP_ALERT_THRESHOLD_HIGH", th.TempHigh); err != nil {
		return nil, err
	}
	if th.TempLow, err = getenvFloat("TEMP_ALERT_THRESHOLD_LOW", th.TempLow); err != nil {
		return nil, err
	}
	if th.Wind, err = getenvFloat("WIND_ALERT_THRESHOLD", th.Wind); err != nil {
		return nil, err
	}
	if th.Precipitation, err = getenvFloat("PRECIPITATION_ALERT_THRESHOLD", th.Precipitation); err != nil {
		return nil, err
	}
	cfg.Thresholds = th

	if cfg.SourceWeights, err = parseWeights(os.Getenv("SOURCE_WEIGHTS")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Thresholds.TempLow >= c.Thresholds.TempHigh {
		return fmt.Errorf("invalid configuration: TEMP_ALERT_THRESHOLD_LOW (%g) must be below TEMP_ALERT_THRESHOLD_HIGH (%g)",
			c.Thresholds.TempLow, c.Thresholds.TempHigh)
	}
	return nil
}

// WeatherKeyCount returns how many weather providers have credentials.
func (c *AppConfig) WeatherKeyCount() int {
	n := 0
	for _, k := range []string{c.OpenWeatherAPIKey, c.WeatherAPIKey, c.VisualCrossingAPIKey, c.GeocoderAPIKey} {
		if k != "" {
			n++
		}
	}
	return n
}

// Consensus returns consensus options with configured weights laid over the defaults.
func (c *AppConfig) Consensus() weather.ConsensusOptions {
	opts := weather.DefaultConsensusOptions()
	opts.Strategy = c.ConsensusStrategy

	weights := make(map[string]float64, len(opts.Weights)+len(c.SourceWeights))
	for k, v := range opts.Weights {
		weights[k] = v
	}
	for k, v := range c.SourceWeights {
		weights[k] = v
	}
	opts.Weights = weights
	return opts
}

// splitLocations splits a ';'-separated list. Locations themselves contain commas.
func splitLocations(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseWeights parses "name=weight,name=weight".
func parseWeights(s string) (map[string]float64, error) {
	weights := map[string]float64{}
	if strings.TrimSpace(s) == "" {
		return weights, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(pair, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid SOURCE_WEIGHTS entry %q: want name=weight", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid SOURCE_WEIGHTS weight for %s: %q", name, val)
		}
		weights[name] = w
	}
	return weights, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
