package report

import (
	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// StatisticalInsights groups distribution, correlation and short-term outlook.
type StatisticalInsights struct {
	Distribution Distribution       `json:"distribution_analysis"`
	Correlation  Correlation        `json:"correlation_analysis"`
	Predictive   PredictiveInsights `json:"predictive_insights"`
}

// Distribution describes the shape of the temperature samples.
type Distribution struct {
	InsufficientData bool    `json:"insufficient_data,omitempty"`
	Skewness         float64 `json:"skewness"`
	Kurtosis         float64 `json:"kurtosis"`
	Modality         string  `json:"modality,omitempty"`
	OutlierCount     int     `json:"outlier_count"`
}

// Correlation holds Pearson coefficients between metric series across sources.
type Correlation struct {
	InsufficientData    bool     `json:"insufficient_data,omitempty"`
	TemperatureHumidity float64  `json:"temperature_humidity"`
	TemperaturePressure float64  `json:"temperature_pressure"`
	WindTemperature     float64  `json:"wind_temperature"`
	Interpretation      []string `json:"interpretation"`
}

// PredictiveInsights is a rule-based short-term outlook.
type PredictiveInsights struct {
	ShortTermOutlook []string `json:"short_term_outlook"`
	Confidence       string   `json:"confidence"`
	Timeframe        string   `json:"timeframe"`
}

func statisticalInsights(readings []weather.Reading, ins analysis.Insights) StatisticalInsights {
	n := len(readings)
	temps := make([]float64, n)
	hums := make([]float64, n)
	pressures := make([]float64, n)
	winds := make([]float64, n)
	for i, r := range readings {
		temps[i] = r.Temperature
		hums[i] = r.Humidity
		pressures[i] = r.Pressure
		winds[i] = r.WindSpeed
	}

	return StatisticalInsights{
		Distribution: distribution(temps),
		Correlation:  correlate(temps, hums, pressures, winds),
		Predictive:   predict(ins),
	}
}

func distribution(temps []float64) Distribution {
	if len(temps) < 3 {
		return Distribution{InsufficientData: true}
	}

	distinct := map[float64]struct{}{}
	for _, t := range temps {
		distinct[t] = struct{}{}
	}
	modality := "multimodal"
	if len(distinct) == 1 {
		modality = "unimodal"
	}

	return Distribution{
		Skewness:     analysis.Skewness(temps),
		Kurtosis:     analysis.Kurtosis(temps),
		Modality:     modality,
		OutlierCount: len(analysis.IQROutliers(temps)),
	}
}

func correlate(temps, hums, pressures, winds []float64) Correlation {
	if len(temps) < 3 {
		return Correlation{InsufficientData: true, Interpretation: []string{}}
	}
	c := Correlation{
		TemperatureHumidity: analysis.Pearson(temps, hums),
		TemperaturePressure: analysis.Pearson(temps, pressures),
		WindTemperature:     analysis.Pearson(winds, temps),
		Interpretation:      []string{},
	}
	switch {
	case c.TemperatureHumidity < -0.5:
		c.Interpretation = append(c.Interpretation, "Temperature and humidity are inversely related (common in some climates)")
	case c.TemperatureHumidity > 0.5:
		c.Interpretation = append(c.Interpretation, "Temperature and humidity are positively correlated")
	}
	return c
}

func predict(ins analysis.Insights) PredictiveInsights {
	preds := []string{}

	if tr := ins.Trends; tr.Available {
		switch {
		case tr.Pressure == analysis.TrendLow && tr.Temperature == analysis.TrendRising:
			preds = append(preds, "Conditions may deteriorate with potential for precipitation")
		case tr.Pressure == analysis.TrendHigh:
			preds = append(preds, "Stable or improving weather likely")
		}
	}
	if ins.Conditions.Primary == weather.ConditionRain && ins.Temperature.Avg < 35 {
		preds = append(preds, "Potential for freezing rain or snow if temperature drops")
	}
	if len(preds) > 3 {
		preds = preds[:3]
	}

	conf := "low"
	if len(preds) > 0 {
		conf = "medium"
	}
	return PredictiveInsights{ShortTermOutlook: preds, Confidence: conf, Timeframe: "next 6-12 hours"}
}
