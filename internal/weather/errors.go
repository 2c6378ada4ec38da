package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProvidersAvailable is returned when no provider is configured with credentials.
	ErrNoProvidersAvailable = errors.New("no weather providers available")

	// ErrInsufficientData is returned when providers were attempted but none produced a reading,
	// and by the consensus engine when given no usable readings.
	ErrInsufficientData = errors.New("insufficient weather data")

	// ErrProviderTimeout marks a fetch abandoned after the per-call timeout.
	ErrProviderTimeout = errors.New("provider timeout")
)

// ProviderError is a failure isolated to a single source.
type ProviderError struct {
	Source string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
