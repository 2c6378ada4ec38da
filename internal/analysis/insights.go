package analysis

import (
	"errors"
	"fmt"

	"github.com/i474232898/weather-consensus/internal/weather"
)

// AnalysisError reports an unexpected failure while computing insights.
type AnalysisError struct {
	Op  string
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Op, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Insights is the full derived view over a set of successful readings.
type Insights struct {
	Sources int `json:"sources"`

	Temperature   Stats  `json:"temperature"`
	FeelsLike     Stats  `json:"feels_like"`
	Humidity      Stats  `json:"humidity"`
	Pressure      Stats  `json:"pressure"`
	Precipitation *Stats `json:"precipitation,omitempty"`
	Wind          Wind   `json:"wind"`

	Conditions  Conditions  `json:"conditions"`
	Comfort     Comfort     `json:"comfort"`
	Consistency Consistency `json:"consistency"`
	Severity    Severity    `json:"severity"`
	Trends      Trends      `json:"trends"`
	Risks       Risks       `json:"risk_factors"`
	DataQuality DataQuality `json:"data_quality"`
}

// Analyze derives Insights from readings. Errored readings are ignored; if
// none remain it fails with an *AnalysisError wrapping weather.ErrInsufficientData.
// A panic inside any computation is recovered into an *AnalysisError.
func Analyze(readings []weather.Reading, p Policy) (ins Insights, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ins = Insights{}
			err = &AnalysisError{Op: "analyze", Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	valid := make([]weather.Reading, 0, len(readings))
	for _, r := range readings {
		if r.OK() {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return Insights{}, &AnalysisError{Op: "analyze", Err: weather.ErrInsufficientData}
	}

	n := len(valid)
	temps := make([]float64, n)
	feels := make([]float64, n)
	hums := make([]float64, n)
	pressures := make([]float64, n)
	var precip []float64
	for i, r := range valid {
		temps[i] = r.Temperature
		feels[i] = r.FeelsLike
		hums[i] = r.Humidity
		pressures[i] = r.Pressure
		if r.Precipitation != nil {
			precip = append(precip, *r.Precipitation)
		}
	}

	ins = Insights{
		Sources:     n,
		Temperature: Describe(temps, "°F"),
		FeelsLike:   Describe(feels, "°F"),
		Humidity:    Describe(hums, "%"),
		Pressure:    Describe(pressures, "hPa"),
		Wind:        analyzeWind(valid),
		Conditions:  analyzeConditions(valid),
		Trends:      analyzeTrends(valid),
	}
	if len(precip) > 0 {
		s := Describe(precip, "in")
		ins.Precipitation = &s
	}

	ins.Comfort = assessComfort(ins.Temperature.Avg, ins.Humidity.Avg, ins.Wind.Avg)
	ins.Consistency = assessConsistency(valid, ins.Conditions, p)
	ins.Severity = ClassifySeverity(ins.Temperature, ins.Wind.Stats, ins.Conditions, p)
	ins.Risks = AssessRisks(ins.Temperature, ins.Conditions, ins.Wind.Stats)
	ins.DataQuality = DataQuality{
		SourceAgreement:     ins.Consistency.ConditionsAgreement,
		TemperatureVariance: ins.Temperature.Std,
		Outliers:            TemperatureOutliers(valid, p.OutlierSigma),
		MissingData:         MissingData(valid),
	}
	return ins, nil
}

// IsInsufficientData reports whether err stems from having no usable readings.
func IsInsufficientData(err error) bool {
	return errors.Is(err, weather.ErrInsufficientData)
}
