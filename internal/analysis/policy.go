// Package analysis derives insights, alerts and recommendations from a set of
// successful weather readings. All functions are pure; no I/O.
package analysis

// Thresholds are the operator-configured alert triggers.
type Thresholds struct {
	TempHigh      float64 `json:"temp_high"`     // °F
	TempLow       float64 `json:"temp_low"`      // °F
	Wind          float64 `json:"wind"`          // mph
	Precipitation float64 `json:"precipitation"` // inches
}

// DefaultThresholds mirrors the stock environment defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHigh:      100,
		TempLow:       0,
		Wind:          50,
		Precipitation: 2.0,
	}
}

// Policy holds the tunable constants behind severity, alerts and recommendations.
type Policy struct {
	Thresholds Thresholds

	// Degrees beyond TempHigh/TempLow that escalate a heat/cold alert to critical.
	TempCriticalMargin float64
	// mph beyond the wind threshold for high and critical wind alerts.
	WindHighMargin     float64
	WindCriticalMargin float64
	// Cross-source temperature range that raises a temperature_variation alert.
	TempVariationAlert float64
	// Condition agreement below which data is flagged as low confidence.
	LowAgreement float64

	SeverityBase map[SeverityLevel]float64
	// Score added when the cross-source temperature range exceeds SeverityRangeBump.
	SeverityRangeBump float64
	SeverityRangeAdd  float64

	// Standard deviations from the mean that mark a reading as an outlier.
	OutlierSigma float64
	// Degrees from the mean beyond which a source's confidence is discounted.
	SourceDeviation float64

	MaxRecommendations int
}

// DefaultPolicy returns the stock policy with the given thresholds.
func DefaultPolicy(th Thresholds) Policy {
	return Policy{
		Thresholds:         th,
		TempCriticalMargin: 10,
		WindHighMargin:     10,
		WindCriticalMargin: 20,
		TempVariationAlert: 20,
		LowAgreement:       0.3,
		SeverityBase: map[SeverityLevel]float64{
			SeveritySevere:   80,
			SeverityHigh:     60,
			SeverityModerate: 40,
			SeverityNormal:   20,
		},
		SeverityRangeBump:  15,
		SeverityRangeAdd:   5,
		OutlierSigma:       2,
		SourceDeviation:    10,
		MaxRecommendations: 5,
	}
}
