package report

import (
	"strings"
	"time"

	"github.com/i474232898/weather-consensus/internal/analysis"
	"github.com/i474232898/weather-consensus/internal/common"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// DetailedAnalysis carries the full insights plus contextual sub-analyses.
type DetailedAnalysis struct {
	Insights    analysis.Insights   `json:"insights"`
	Location    LocationAnalysis    `json:"location_analysis"`
	Time        TimeAnalysis        `json:"time_analysis"`
	Sources     SourceAnalysis      `json:"source_analysis"`
	Comparative ComparativeAnalysis `json:"comparative_analysis"`
}

// LocationAnalysis classifies the location and lists what that implies.
type LocationAnalysis struct {
	LocationType        string   `json:"location_type"`
	Elevation           string   `json:"elevation_considerations"`
	UrbanHeatIsland     string   `json:"urban_heat_island"`
	MicroclimateFactors []string `json:"microclimate_factors"`
}

// TimeAnalysis describes the time of day and season of the report.
type TimeAnalysis struct {
	CurrentHour     int      `json:"current_hour"`
	TimeOfDay       string   `json:"time_of_day"`
	SeasonalFactors []string `json:"seasonal_factors"`
	Daylight        string   `json:"daylight_considerations"`
}

// SourceDetail is one source's outcome as seen by the report.
type SourceDetail struct {
	Count              int               `json:"count"`
	PrimaryCondition   weather.Condition `json:"primary_condition"`
	ReliabilityPercent float64           `json:"reliability_percentage"`
}

// SourceAnalysis summarizes how the sources performed.
type SourceAnalysis struct {
	TotalSources      int                     `json:"total_sources"`
	Details           map[string]SourceDetail `json:"source_details"`
	RecommendedSource string                  `json:"recommended_source,omitempty"`
}

// SeasonalComparison compares the temperature with the month's norm.
type SeasonalComparison struct {
	NormalForSeason float64 `json:"normal_for_season"`
	Difference      float64 `json:"difference"`
	Interpretation  string  `json:"interpretation"`
}

// ComparativeAnalysis sets current values against typical conditions.
type ComparativeAnalysis struct {
	TemperatureVsNormal string             `json:"temperature_vs_normal"`
	HumidityVsNormal    string             `json:"humidity_vs_normal"`
	Seasonal            SeasonalComparison `json:"seasonal_comparison"`
	ExtremenessIndex    float64            `json:"extremeness_index"`
}

func detailedAnalysis(location string, ins analysis.Insights, attempts []weather.Reading, now time.Time) DetailedAnalysis {
	return DetailedAnalysis{
		Insights:    ins,
		Location:    analyzeLocation(location),
		Time:        analyzeTime(now),
		Sources:     analyzeSources(attempts),
		Comparative: compare(ins, now.Month()),
	}
}

// ClassifyLocation guesses the terrain type from words in the location name.
func ClassifyLocation(location string) string {
	l := strings.ToLower(location)
	switch {
	case common.HasAny(l, "city", "town", "urban"):
		return "urban"
	case common.HasAny(l, "coast", "beach", "shore"):
		return "coastal"
	case common.HasAny(l, "mountain", "hill", "alps"):
		return "mountainous"
	case common.HasAny(l, "desert", "arid", "dry"):
		return "arid"
	default:
		return "general"
	}
}

func analyzeLocation(location string) LocationAnalysis {
	heat := "Unlikely"
	if strings.Contains(strings.ToLower(location), "city") {
		heat = "Possible in urban areas"
	}
	return LocationAnalysis{
		LocationType:        ClassifyLocation(location),
		Elevation:           "Assume sea level",
		UrbanHeatIsland:     heat,
		MicroclimateFactors: []string{"wind patterns", "precipitation variation"},
	}
}

func analyzeTime(now time.Time) TimeAnalysis {
	h := now.Hour()
	var tod string
	switch {
	case h >= 20 || h < 6:
		tod = "night"
	case h >= 18:
		tod = "evening"
	case h >= 12:
		tod = "afternoon"
	default:
		tod = "morning"
	}
	daylight := "good visibility"
	if h < 7 || h > 19 {
		daylight = "limited visibility"
	}
	return TimeAnalysis{
		CurrentHour:     h,
		TimeOfDay:       tod,
		SeasonalFactors: SeasonalFactors(now.Month()),
		Daylight:        daylight,
	}
}

// SeasonalFactors lists northern-hemisphere seasonal considerations for month.
func SeasonalFactors(month time.Month) []string {
	switch month {
	case time.December, time.January, time.February:
		return []string{"cold temperatures possible", "snow potential", "limited daylight"}
	case time.March, time.April, time.May:
		return []string{"variable conditions", "increasing daylight", "storm potential"}
	case time.June, time.July, time.August:
		return []string{"warm temperatures", "long daylight", "thunderstorm potential"}
	default:
		return []string{"cooling temperatures", "decreasing daylight", "frost potential"}
	}
}

func analyzeSources(attempts []weather.Reading) SourceAnalysis {
	type acc struct {
		count, ok int
		conds     []string
	}
	order := []string{}
	bySource := map[string]*acc{}
	for _, r := range attempts {
		a, seen := bySource[r.Source]
		if !seen {
			a = &acc{}
			bySource[r.Source] = a
			order = append(order, r.Source)
		}
		a.count++
		a.conds = append(a.conds, string(r.Condition))
		if r.OK() {
			a.ok++
		}
	}

	out := SourceAnalysis{TotalSources: len(order), Details: map[string]SourceDetail{}}
	best := -1.0
	for _, name := range order {
		a := bySource[name]
		primary, _ := weather.Mode(a.conds)
		pct := float64(a.ok) / float64(a.count) * 100
		out.Details[name] = SourceDetail{
			Count:              a.count,
			PrimaryCondition:   weather.Condition(primary),
			ReliabilityPercent: pct,
		}
		if pct > best {
			best = pct
			out.RecommendedSource = name
		}
	}
	return out
}

// US-average monthly temperature norms, °F.
var seasonalNorms = map[time.Month]float64{
	time.January: 32, time.February: 35, time.March: 45, time.April: 55,
	time.May: 65, time.June: 75, time.July: 80, time.August: 78,
	time.September: 72, time.October: 60, time.November: 48, time.December: 37,
}

func compare(ins analysis.Insights, month time.Month) ComparativeAnalysis {
	temp := ins.Temperature.Avg

	var vsNormal string
	switch {
	case temp > 85:
		vsNormal = "Much warmer than normal"
	case temp > 75:
		vsNormal = "Warmer than normal"
	case temp > 65:
		vsNormal = "Near normal"
	case temp > 55:
		vsNormal = "Cooler than normal"
	default:
		vsNormal = "Much cooler than normal"
	}

	var humidity string
	switch h := ins.Humidity.Avg; {
	case h > 70:
		humidity = "More humid than normal"
	case h > 50:
		humidity = "Normal humidity"
	default:
		humidity = "Less humid than normal"
	}

	normal := seasonalNorms[month]
	diff := temp - normal
	interp := "near normal"
	switch {
	case diff > 5:
		interp = "above normal"
	case diff < -5:
		interp = "below normal"
	}

	return ComparativeAnalysis{
		TemperatureVsNormal: vsNormal,
		HumidityVsNormal:    humidity,
		Seasonal:            SeasonalComparison{NormalForSeason: normal, Difference: diff, Interpretation: interp},
		ExtremenessIndex:    ExtremenessIndex(ins),
	}
}

// ExtremenessIndex scores how extreme the conditions are on 0-100.
func ExtremenessIndex(ins analysis.Insights) float64 {
	var score float64

	switch t := ins.Temperature.Avg; {
	case t > 90 || t < 20:
		score += 40
	case t > 80 || t < 32:
		score += 20
	}

	switch ins.Conditions.Primary {
	case weather.ConditionThunderstorm, weather.ConditionBlizzard, weather.ConditionHurricane:
		score += 40
	case weather.ConditionHeavyRain, weather.ConditionHeavySnow:
		score += 20
	}

	switch w := ins.Wind.Max; {
	case w > 40:
		score += 20
	case w > 25:
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
