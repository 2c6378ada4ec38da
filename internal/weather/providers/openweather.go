package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates a new OpenWeatherProvider. The placeholder
// key shipped in sample env files counts as not configured.
func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	if apiKey == "your_actual_openweather_api_key_here" {
		apiKey = ""
	}
	return &OpenWeatherProvider{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: newHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

// WithBaseURL overrides the API endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Available() bool {
	return p.apiKey != ""
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, location string) (weather.Reading, error) {
	if !p.Available() {
		return weather.Reading{}, fmt.Errorf("openweather: %w", errNotConfigured)
	}
	q, err := cleanLocation(location)
	if err != nil {
		return weather.Reading{}, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "imperial")
		values.Set("q", q)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("openweather request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Name string `json:"name"`
		Dt   int64  `json:"dt"`
		Main struct {
			Temp      float64  `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
			TempMin   *float64 `json:"temp_min"`
			TempMax   *float64 `json:"temp_max"`
			Humidity  float64  `json:"humidity"`
			Pressure  float64  `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64  `json:"speed"`
			Deg   float64  `json:"deg"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
		Clouds *struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Rain *struct {
			OneH float64 `json:"1h"`
		} `json:"rain"`
		Snow *struct {
			OneH float64 `json:"1h"`
		} `json:"snow"`
		Visibility *float64 `json:"visibility"`
		Sys        struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("openweather: decode response: %w", err)
	}

	r := weather.Reading{
		Source:        p.name,
		Location:      payload.Name,
		Country:       payload.Sys.Country,
		Temperature:   payload.Main.Temp,
		FeelsLike:     orDefault(payload.Main.FeelsLike, payload.Main.Temp),
		TempMin:       orDefault(payload.Main.TempMin, payload.Main.Temp),
		TempMax:       orDefault(payload.Main.TempMax, payload.Main.Temp),
		Humidity:      payload.Main.Humidity,
		Pressure:      payload.Main.Pressure,
		WindSpeed:     payload.Wind.Speed,
		WindDirection: payload.Wind.Deg,
		WindGust:      payload.Wind.Gust,
		Visibility:    payload.Visibility,
		Sunrise:       unixTime(payload.Sys.Sunrise),
		Sunset:        unixTime(payload.Sys.Sunset),
		ObservedAt:    unixTime(payload.Dt),
		Condition:     weather.ConditionUnknown,
	}
	if r.Location == "" {
		r.Location = q
	}
	if payload.Clouds != nil {
		r.CloudCover = weather.Ptr(payload.Clouds.All)
	}

	// Reported in mm over the last hour.
	precipMM := 0.0
	if payload.Rain != nil {
		precipMM = payload.Rain.OneH
	} else if payload.Snow != nil {
		precipMM = payload.Snow.OneH
	}
	r.Precipitation = weather.Ptr(precipMM * mmToInch)

	if len(payload.Weather) > 0 {
		w := payload.Weather[0]
		r.Description = titleCase(w.Description)
		r.Condition = mapOpenWeatherCondition(w.Main, w.Description)
	}
	return r, nil
}

func mapOpenWeatherCondition(main, description string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionClouds
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand", "Ash":
		return weather.ConditionFog
	case "Squall":
		return weather.ConditionWindy
	case "Tornado":
		return weather.ConditionTornado
	}
	// Rain/Snow/Thunderstorm intensity only shows up in the description.
	if c := conditionFromText(description); c != weather.ConditionUnknown {
		return c
	}
	return conditionFromText(main)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
