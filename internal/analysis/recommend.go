package analysis

import "github.com/i474232898/weather-consensus/internal/weather"

// Recommend builds actionable advice. Critical and high alerts come first,
// then clothing, activity and health guidance; the list is capped at
// p.MaxRecommendations. Repeated advice is listed once.
func Recommend(alerts []Alert, ins Insights, p Policy) []string {
	recs := []string{}
	seen := map[string]bool{}
	add := func(r string) {
		if !seen[r] {
			seen[r] = true
			recs = append(recs, r)
		}
	}

	for _, sev := range []AlertSeverity{AlertCritical, AlertHigh} {
		for _, a := range alerts {
			if a.Severity != sev || a.Recommendation == "" {
				continue
			}
			if sev == AlertCritical {
				add("CRITICAL: " + a.Recommendation)
			} else {
				add("High Priority: " + a.Recommendation)
			}
		}
	}

	avg := ins.Temperature.Avg
	switch {
	case avg < 32:
		add("Wear warm layers, gloves, and a hat")
	case avg < 50:
		add("Wear a jacket or sweater")
	case avg > 80:
		add("Wear light, breathable clothing")
	}

	switch primary := ins.Conditions.Primary; {
	case primary == weather.ConditionRain || primary == weather.ConditionSnow:
		add("Consider indoor activities or postpone outdoor plans")
	case ins.Comfort.Level == ComfortVeryComfortable || ins.Comfort.Level == ComfortComfortable:
		add("Good conditions for outdoor activities")
	}

	if avg > 85 {
		add("Stay hydrated and take breaks in shade or air conditioning")
	}
	if avg < 20 {
		add("Limit outdoor exposure to prevent frostbite")
	}

	if p.MaxRecommendations > 0 && len(recs) > p.MaxRecommendations {
		recs = recs[:p.MaxRecommendations]
	}
	return recs
}
