package providers

import (
	"net/http"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// Keys holds provider credentials. An empty key leaves that provider unavailable.
type Keys struct {
	OpenWeather    string
	WeatherAPI     string
	VisualCrossing string
	// Geocoder enables Open-Meteo, which only accepts coordinates.
	Geocoder string
}

// All returns every supported provider, configured or not. The collector
// skips the unavailable ones.
func All(client *http.Client, keys Keys) []weather.Provider {
	return []weather.Provider{
		NewOpenWeatherProvider(client, keys.OpenWeather),
		NewWeatherAPIProvider(client, keys.WeatherAPI),
		NewVisualCrossingProvider(client, keys.VisualCrossing),
		NewOpenMeteoProvider(client, GoogleGeocoder(keys.Geocoder)),
	}
}
