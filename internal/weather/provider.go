package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Visual Crossing).
//
// Fetch returns a normalized Reading or an error. The Collector turns errors,
// timeouts and panics into error-tagged readings, so implementations may fail freely.
type Provider interface {
	Name() string
	// Available reports whether the provider has the credentials it needs.
	Available() bool
	Fetch(ctx context.Context, location string) (Reading, error)
}

func availableProviders(providers []Provider) []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil && p.Available() {
			out = append(out, p)
		}
	}
	return out
}
