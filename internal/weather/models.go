package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition bucket.
// Providers map their own codes and texts onto these values so that sources
// can be compared during consensus.
type Condition string

const (
	ConditionUnknown      Condition = "Unknown"
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionHeavyRain    Condition = "Heavy Rain"
	ConditionFreezingRain Condition = "Freezing Rain"
	ConditionSnow         Condition = "Snow"
	ConditionHeavySnow    Condition = "Heavy Snow"
	ConditionIceStorm     Condition = "Ice Storm"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionBlizzard     Condition = "Blizzard"
	ConditionHurricane    Condition = "Hurricane"
	ConditionTornado      Condition = "Tornado"
	ConditionFog          Condition = "Fog"
	ConditionWindy        Condition = "Windy"
)

// Location represents a logical place for which we request weather.
// Query is the free-form string handed to providers; City/Country are a best-effort split of it.
type Location struct {
	Query   string `json:"query"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// ParseLocation splits "City, Region, Country" style input. The first
// comma-separated part is the city and the last one the country.
func ParseLocation(s string) Location {
	q := strings.TrimSpace(s)
	parts := strings.Split(q, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	loc := Location{Query: q, City: parts[0]}
	if len(parts) > 1 {
		loc.Country = parts[len(parts)-1]
	}
	return loc
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return strings.ToLower(l.City) + ":" + strings.ToLower(l.Country)
}

// Reading is one provider's normalized current-weather observation.
// Temperatures are °F, pressure hPa, wind mph, precipitation inches.
//
// A Reading either carries an Error and zeroed numerics, or populated
// numerics and no Error. Errored readings are never aggregated.
type Reading struct {
	Source   string `json:"source"`
	Location string `json:"location"`
	Country  string `json:"country"`

	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`

	Humidity      float64  `json:"humidity"`
	Pressure      float64  `json:"pressure"`
	WindSpeed     float64  `json:"wind_speed"`
	WindDirection float64  `json:"wind_direction"`
	WindGust      *float64 `json:"wind_gust,omitempty"`

	Condition     Condition `json:"conditions"`
	Description   string    `json:"description,omitempty"`
	CloudCover    *float64  `json:"cloud_cover,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	UVIndex       *float64  `json:"uv_index,omitempty"`
	Visibility    *float64  `json:"visibility,omitempty"`

	Sunrise    *time.Time `json:"sunrise,omitempty"`
	Sunset     *time.Time `json:"sunset,omitempty"`
	ObservedAt *time.Time `json:"observed_at,omitempty"`

	Error string `json:"error,omitempty"`
}

// OK reports whether the reading carries usable data.
func (r Reading) OK() bool {
	return r.Error == ""
}

// ErrorReading builds the placeholder reading substituted for a failed source.
func ErrorReading(source, location, msg string) Reading {
	return Reading{
		Source:    source,
		Location:  location,
		Condition: ConditionUnknown,
		Error:     msg,
	}
}

// SourceAttempt records the outcome of one provider fetch.
type SourceAttempt struct {
	Source  string        `json:"source"`
	Latency time.Duration `json:"latency_ns"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// CollectionResult is the outcome of one fan-out fetch. It is built fresh for
// every request and not modified after the Collector returns it.
type CollectionResult struct {
	Location string `json:"location"`

	// Readings holds only the successful readings.
	Readings []Reading `json:"readings"`
	// All holds one reading per attempted source, errored ones included.
	All      []Reading       `json:"-"`
	Attempts []SourceAttempt `json:"attempts"`
	Errors   []string        `json:"errors,omitempty"`

	// Configured is the number of providers known to the collector,
	// Available the number that had credentials and were attempted.
	Configured int `json:"configured"`
	Available  int `json:"available"`
}

// SuccessCount returns the number of sources that produced a usable reading.
func (c CollectionResult) SuccessCount() int {
	return len(c.Readings)
}

// Ptr returns a pointer to v. Handy for the optional Reading fields.
func Ptr[T any](v T) *T {
	return &v
}
