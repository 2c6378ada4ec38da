package providers

import (
	"strings"

	"github.com/i474232898/weather-consensus/internal/common"
	"github.com/i474232898/weather-consensus/internal/weather"
)

// conditionFromText buckets free-form provider condition text. Order matters:
// the more severe buckets are tested before their milder relatives.
func conditionFromText(text string) weather.Condition {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return weather.ConditionUnknown
	case common.HasAny(t, "tornado"):
		return weather.ConditionTornado
	case common.HasAny(t, "hurricane", "tropical storm"):
		return weather.ConditionHurricane
	case common.HasAny(t, "blizzard"):
		return weather.ConditionBlizzard
	case common.HasAny(t, "ice storm"):
		return weather.ConditionIceStorm
	case common.HasAny(t, "thunder", "storm"):
		return weather.ConditionThunderstorm
	case common.HasAny(t, "freezing rain", "freezing drizzle", "sleet", "ice pellets"):
		return weather.ConditionFreezingRain
	case common.HasAny(t, "heavy snow"):
		return weather.ConditionHeavySnow
	case common.HasAny(t, "snow", "flurr"):
		return weather.ConditionSnow
	case common.HasAny(t, "heavy rain", "torrential", "heavy intensity rain", "extreme rain"):
		return weather.ConditionHeavyRain
	case common.HasAny(t, "rain", "drizzle", "shower"):
		return weather.ConditionRain
	case common.HasAny(t, "fog", "mist", "haze", "smoke"):
		return weather.ConditionFog
	case common.HasAny(t, "wind", "squall"):
		return weather.ConditionWindy
	case common.HasAny(t, "cloud", "overcast"):
		return weather.ConditionClouds
	case common.HasAny(t, "clear", "sunny", "fair"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}

// conditionFromWMO maps WMO weather interpretation codes used by Open-Meteo.
func conditionFromWMO(code int) weather.Condition {
	switch code {
	case 0:
		return weather.ConditionClear
	case 1, 2, 3:
		return weather.ConditionClouds
	case 45, 48:
		return weather.ConditionFog
	case 56, 57, 66, 67:
		return weather.ConditionFreezingRain
	case 51, 53, 55, 61, 63, 80, 81:
		return weather.ConditionRain
	case 65, 82:
		return weather.ConditionHeavyRain
	case 71, 73, 77, 85:
		return weather.ConditionSnow
	case 75, 86:
		return weather.ConditionHeavySnow
	case 95, 96, 99:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}

// wmoDescription gives a short human label for a WMO code.
func wmoDescription(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61, 63:
		return "Rain"
	case 65:
		return "Heavy rain"
	case 66, 67:
		return "Freezing rain"
	case 71, 73:
		return "Snow"
	case 75:
		return "Heavy snow"
	case 77:
		return "Snow grains"
	case 80, 81:
		return "Rain showers"
	case 82:
		return "Violent rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return ""
	}
}
