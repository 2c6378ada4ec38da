package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// GeocodeFunc resolves a location to coordinates.
type GeocodeFunc func(ctx context.Context, loc weather.Location) (Coordinates, error)

var errGeocode = errors.New("geocoding failed")

// geocodeTimeout bounds one lookup when the caller's context has no earlier deadline.
const geocodeTimeout = 10 * time.Second

// geocoderSlot serializes lookups; kelvins/geocoder keeps its key in a
// package variable.
var geocoderSlot = make(chan struct{}, 1)

// geocodeLookup performs the blocking library call. Replaced in tests.
var geocodeLookup = func(apiKey string, addr geocoder.Address) (geocoder.Location, error) {
	geocoder.ApiKey = apiKey
	return geocoder.Geocoding(addr)
}

// GoogleGeocoder returns a GeocodeFunc backed by kelvins/geocoder.
//
// The library call takes no context and uses a client without a timeout, so
// it runs in its own goroutine and the caller stops waiting at its deadline.
// The slot stays held until the abandoned call returns; later callers then
// fail at their own deadline instead of queueing behind it.
func GoogleGeocoder(apiKey string) GeocodeFunc {
	if apiKey == "" {
		return nil
	}
	return func(ctx context.Context, loc weather.Location) (Coordinates, error) {
		ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
		defer cancel()

		select {
		case geocoderSlot <- struct{}{}:
		case <-ctx.Done():
			return Coordinates{}, fmt.Errorf("%w: waiting for geocoder: %v", errGeocode, ctx.Err())
		}

		type lookup struct {
			loc geocoder.Location
			err error
		}
		done := make(chan lookup, 1)
		go func() {
			defer func() { <-geocoderSlot }()
			res, err := geocodeLookup(apiKey, geocoder.Address{
				City:    loc.City,
				Country: loc.Country,
			})
			done <- lookup{res, err}
		}()

		select {
		case l := <-done:
			if l.err != nil {
				return Coordinates{}, fmt.Errorf("%w: %v", errGeocode, l.err)
			}
			return Coordinates{Lat: l.loc.Latitude, Lon: l.loc.Longitude}, nil
		case <-ctx.Done():
			return Coordinates{}, fmt.Errorf("%w: %v", errGeocode, ctx.Err())
		}
	}
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo needs no key but only accepts coordinates, so it is available
// only when a geocoder is configured.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	geocode GeocodeFunc

	mu     sync.Mutex
	coords map[string]Coordinates
}

func NewOpenMeteoProvider(client *http.Client, geocode GeocodeFunc) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: newHTTPConfig(client),
		circuit: newBreaker("openmeteo"),
		geocode: geocode,
		coords:  make(map[string]Coordinates),
	}
}

// WithBaseURL overrides the API endpoint.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Available() bool {
	return p.geocode != nil
}

func (p *OpenMeteoProvider) resolve(ctx context.Context, loc weather.Location) (Coordinates, error) {
	key := loc.Key()

	p.mu.Lock()
	c, ok := p.coords[key]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	c, err := p.geocode(ctx, loc)
	if err != nil {
		return Coordinates{}, err
	}

	p.mu.Lock()
	p.coords[key] = c
	p.mu.Unlock()
	return c, nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, location string) (weather.Reading, error) {
	if !p.Available() {
		return weather.Reading{}, fmt.Errorf("openmeteo: geocoder %w", errNotConfigured)
	}
	q, err := cleanLocation(location)
	if err != nil {
		return weather.Reading{}, err
	}
	loc := weather.ParseLocation(q)

	coords, err := p.resolve(ctx, loc)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("openmeteo: %w", err)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("current", strings.Join([]string{
			"temperature_2m", "apparent_temperature", "relative_humidity_2m",
			"surface_pressure", "wind_speed_10m", "wind_direction_10m",
			"wind_gusts_10m", "cloud_cover", "precipitation", "weather_code",
		}, ","))
		values.Set("daily", "temperature_2m_max,temperature_2m_min,sunrise,sunset,uv_index_max")
		values.Set("forecast_days", "1")
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
		values.Set("precipitation_unit", "inch")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("openmeteo request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time                string   `json:"time"`
			Temperature         float64  `json:"temperature_2m"`
			ApparentTemperature *float64 `json:"apparent_temperature"`
			RelativeHumidity    float64  `json:"relative_humidity_2m"`
			SurfacePressure     float64  `json:"surface_pressure"`
			WindSpeed           float64  `json:"wind_speed_10m"`
			WindDirection       float64  `json:"wind_direction_10m"`
			WindGusts           *float64 `json:"wind_gusts_10m"`
			CloudCover          *float64 `json:"cloud_cover"`
			Precipitation       *float64 `json:"precipitation"`
			WeatherCode         int      `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
			Sunrise []string  `json:"sunrise"`
			Sunset  []string  `json:"sunset"`
			UVMax   []float64 `json:"uv_index_max"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("openmeteo: decode response: %w", err)
	}

	cur := payload.Current
	r := weather.Reading{
		Source:        p.name,
		Location:      loc.City,
		Country:       loc.Country,
		Temperature:   cur.Temperature,
		FeelsLike:     orDefault(cur.ApparentTemperature, cur.Temperature),
		TempMin:       cur.Temperature,
		TempMax:       cur.Temperature,
		Humidity:      cur.RelativeHumidity,
		Pressure:      cur.SurfacePressure,
		WindSpeed:     cur.WindSpeed,
		WindDirection: cur.WindDirection,
		WindGust:      cur.WindGusts,
		CloudCover:    cur.CloudCover,
		Precipitation: cur.Precipitation,
		Condition:     conditionFromWMO(cur.WeatherCode),
		Description:   wmoDescription(cur.WeatherCode),
		ObservedAt:    isoMinute(cur.Time),
	}
	d := payload.Daily
	if len(d.TempMin) > 0 && len(d.TempMax) > 0 {
		r.TempMin, r.TempMax = d.TempMin[0], d.TempMax[0]
	}
	if len(d.UVMax) > 0 {
		r.UVIndex = weather.Ptr(d.UVMax[0])
	}
	if len(d.Sunrise) > 0 {
		r.Sunrise = isoMinute(d.Sunrise[0])
	}
	if len(d.Sunset) > 0 {
		r.Sunset = isoMinute(d.Sunset[0])
	}
	return r, nil
}

// isoMinute parses Open-Meteo's "2006-01-02T15:04" timestamps (UTC).
func isoMinute(s string) *time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		return nil
	}
	return &t
}
