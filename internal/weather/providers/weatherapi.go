package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: newHTTPConfig(client),
		circuit: newBreaker("weatherapi"),
	}
}

// WithBaseURL overrides the API endpoint.
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Available() bool {
	return p.apiKey != ""
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, location string) (weather.Reading, error) {
	if !p.Available() {
		return weather.Reading{}, fmt.Errorf("weatherapi: %w", errNotConfigured)
	}
	q, err := cleanLocation(location)
	if err != nil {
		return weather.Reading{}, err
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", q)
		values.Set("aqi", "no")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("weatherapi request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
		Current struct {
			LastUpdatedEpoch int64    `json:"last_updated_epoch"`
			TempF            float64  `json:"temp_f"`
			FeelsLikeF       *float64 `json:"feelslike_f"`
			Humidity         float64  `json:"humidity"`
			PressureMb       float64  `json:"pressure_mb"`
			WindKph          float64  `json:"wind_kph"`
			WindDegree       float64  `json:"wind_degree"`
			GustKph          *float64 `json:"gust_kph"`
			PrecipMm         float64  `json:"precip_mm"`
			VisKm            *float64 `json:"vis_km"`
			Cloud            float64  `json:"cloud"`
			UV               float64  `json:"uv"`
			Condition        struct {
				Text string `json:"text"`
				Code int    `json:"code"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("weatherapi: decode response: %w", err)
	}

	cur := payload.Current
	r := weather.Reading{
		Source:   p.name,
		Location: payload.Location.Name,
		Country:  payload.Location.Country,
		// Current conditions carry no min/max.
		Temperature:   cur.TempF,
		FeelsLike:     orDefault(cur.FeelsLikeF, cur.TempF),
		TempMin:       cur.TempF,
		TempMax:       cur.TempF,
		Humidity:      cur.Humidity,
		Pressure:      cur.PressureMb,
		WindSpeed:     cur.WindKph * kphToMph,
		WindDirection: cur.WindDegree,
		Description:   cur.Condition.Text,
		Condition:     mapWeatherAPICondition(cur.Condition.Code, cur.Condition.Text),
		CloudCover:    weather.Ptr(cur.Cloud),
		Precipitation: weather.Ptr(cur.PrecipMm * mmToInch),
		UVIndex:       weather.Ptr(cur.UV),
		ObservedAt:    unixTime(cur.LastUpdatedEpoch),
	}
	if r.Location == "" {
		r.Location = q
	}
	if cur.GustKph != nil {
		r.WindGust = weather.Ptr(*cur.GustKph * kphToMph)
	}
	if cur.VisKm != nil {
		r.Visibility = weather.Ptr(*cur.VisKm * kmToMeter)
	}
	return r, nil
}

// mapWeatherAPICondition buckets WeatherAPI condition codes, falling back to the text.
func mapWeatherAPICondition(code int, text string) weather.Condition {
	switch code {
	case 1000:
		return weather.ConditionClear
	case 1003, 1006, 1009:
		return weather.ConditionClouds
	case 1030, 1135, 1147:
		return weather.ConditionFog
	case 1087, 1273, 1276, 1279, 1282:
		return weather.ConditionThunderstorm
	case 1117:
		return weather.ConditionBlizzard
	case 1192, 1195, 1246:
		return weather.ConditionHeavyRain
	case 1222, 1225, 1258:
		return weather.ConditionHeavySnow
	case 1072, 1168, 1171, 1198, 1201, 1204, 1207, 1237, 1249, 1252, 1261, 1264:
		return weather.ConditionFreezingRain
	case 1063, 1150, 1153, 1180, 1183, 1186, 1189, 1240, 1243:
		return weather.ConditionRain
	case 1066, 1069, 1114, 1210, 1213, 1216, 1219, 1255:
		return weather.ConditionSnow
	}
	return conditionFromText(text)
}
