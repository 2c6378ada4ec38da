package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/sony/gobreaker"
)

// VisualCrossingProvider implements the weather.Provider interface for the
// Visual Crossing timeline API, reading only its currentConditions block.
type VisualCrossingProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewVisualCrossingProvider(client *http.Client, apiKey string) *VisualCrossingProvider {
	return &VisualCrossingProvider{
		name:    "visualcrossing",
		apiKey:  apiKey,
		baseURL: "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		httpCfg: newHTTPConfig(client),
		circuit: newBreaker("visualcrossing"),
		now:     time.Now,
	}
}

// WithBaseURL overrides the API endpoint.
func (p *VisualCrossingProvider) WithBaseURL(u string) *VisualCrossingProvider {
	p.baseURL = u
	return p
}

func (p *VisualCrossingProvider) Name() string {
	return p.name
}

func (p *VisualCrossingProvider) Available() bool {
	return p.apiKey != ""
}

func (p *VisualCrossingProvider) Fetch(ctx context.Context, location string) (weather.Reading, error) {
	if !p.Available() {
		return weather.Reading{}, fmt.Errorf("visualcrossing: %w", errNotConfigured)
	}
	q, err := cleanLocation(location)
	if err != nil {
		return weather.Reading{}, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("unitGroup", "us")
		values.Set("include", "current")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(q), values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("visualcrossing request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		ResolvedAddress   string `json:"resolvedAddress"`
		CurrentConditions struct {
			DatetimeEpoch int64    `json:"datetimeEpoch"`
			Temp          float64  `json:"temp"`
			FeelsLike     *float64 `json:"feelslike"`
			Humidity      float64  `json:"humidity"`
			Pressure      float64  `json:"pressure"`
			WindSpeed     float64  `json:"windspeed"`
			WindDir       float64  `json:"winddir"`
			WindGust      *float64 `json:"windgust"`
			Visibility    *float64 `json:"visibility"`
			CloudCover    *float64 `json:"cloudcover"`
			Precip        *float64 `json:"precip"`
			UVIndex       *float64 `json:"uvindex"`
			Conditions    string   `json:"conditions"`
			Sunrise       string   `json:"sunrise"`
			Sunset        string   `json:"sunset"`
		} `json:"currentConditions"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("visualcrossing: decode response: %w", err)
	}

	cur := payload.CurrentConditions
	address := payload.ResolvedAddress
	if address == "" {
		address = q
	}
	loc := weather.ParseLocation(address)

	r := weather.Reading{
		Source:        p.name,
		Location:      loc.City,
		Country:       loc.Country,
		Temperature:   cur.Temp,
		FeelsLike:     orDefault(cur.FeelsLike, cur.Temp),
		TempMin:       cur.Temp,
		TempMax:       cur.Temp,
		Humidity:      cur.Humidity,
		Pressure:      cur.Pressure,
		WindSpeed:     cur.WindSpeed,
		WindDirection: cur.WindDir,
		WindGust:      cur.WindGust,
		Description:   cur.Conditions,
		Condition:     conditionFromText(firstCondition(cur.Conditions)),
		CloudCover:    cur.CloudCover,
		Precipitation: cur.Precip,
		UVIndex:       cur.UVIndex,
		Sunrise:       p.clockTime(cur.Sunrise),
		Sunset:        p.clockTime(cur.Sunset),
		ObservedAt:    unixTime(cur.DatetimeEpoch),
	}
	if cur.Visibility != nil {
		// Reported in miles under unitGroup=us.
		r.Visibility = weather.Ptr(*cur.Visibility * 1609.344)
	}
	return r, nil
}

// firstCondition picks the leading entry of "Rain, Partially cloudy" style lists.
func firstCondition(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[:i]
	}
	return s
}

// clockTime anchors an HH:MM:SS value to today's date.
func (p *VisualCrossingProvider) clockTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	tod, err := time.Parse("15:04:05", s)
	if err != nil {
		return nil
	}
	now := p.now()
	t := time.Date(now.Year(), now.Month(), now.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, now.Location())
	return &t
}
