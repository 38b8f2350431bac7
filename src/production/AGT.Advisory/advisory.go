// Package advisory turns aggregated soil moisture and current weather
// into irrigation guidance. Rules are evaluated in order and the first
// match wins; thresholds are part of the external contract.
package advisory

import "fmt"

// Tone grades an advice or soil classification for presentation.
type Tone string

const (
	ToneDefault Tone = "default"
	ToneGood    Tone = "good"
	ToneWarn    Tone = "warn"
	ToneBad     Tone = "bad"
)

const (
	heavyRainMm = 5.0
	wetNowMm    = 1.0
	drySoilPct  = 25.0
	okaySoilPct = 45.0
)

// Advice is a rule-derived irrigation recommendation.
type Advice struct {
	Tone    Tone     `json:"tone"`
	Message string   `json:"message"`
	Bullets []string `json:"bullets"`
}

// SoilStatus is the weather-independent soil moisture classification.
type SoilStatus struct {
	Label       string `json:"label"`
	Tone        Tone   `json:"tone"`
	Description string `json:"description"`
}

// Advise maps average moisture, precipitation and humidity to guidance.
// Nil inputs mean the corresponding signal is unavailable. Precipitation
// rules dominate moisture rules.
func Advise(avgMoisture, precipitationMm, humidityPercent *float64) Advice {
	if avgMoisture == nil && precipitationMm == nil {
		return Advice{
			Tone:    ToneDefault,
			Message: "Not enough data yet. Once readings and weather are available, we'll suggest actions here.",
			Bullets: []string{"Ensure sensors are reporting.", "Confirm farm location is set correctly."},
		}
	}
	if precipitationMm != nil && *precipitationMm >= heavyRainMm {
		return Advice{
			Tone:    ToneWarn,
			Message: "Heavy rain detected. Hold off watering and check drainage / flooding risk.",
			Bullets: []string{"Inspect low points and drains.", "Delay irrigation until soil stabilizes."},
		}
	}
	if precipitationMm != nil && *precipitationMm >= wetNowMm {
		return Advice{
			Tone:    ToneGood,
			Message: "Rain detected. Avoid watering for now and re-check moisture later.",
			Bullets: []string{"Re-check in a few hours.", "Watch for over-saturation in clay soils."},
		}
	}
	if avgMoisture != nil && *avgMoisture < drySoilPct {
		return Advice{
			Tone:    ToneBad,
			Message: "Soil looks dry and no rain detected. Water today, then monitor the next reading.",
			Bullets: []string{"Irrigate in the morning/evening.", "Check for leaks or blocked lines."},
		}
	}
	if avgMoisture != nil && *avgMoisture < okaySoilPct {
		return Advice{
			Tone:    ToneWarn,
			Message: "Moisture is moderate. Consider a light watering if your crop is sensitive to dryness.",
			Bullets: []string{
				humidityBullet(humidityPercent),
				"Watch the moisture trend over the next readings.",
			},
		}
	}
	if avgMoisture != nil {
		return Advice{
			Tone:    ToneGood,
			Message: "Moisture looks good. Maintain schedule and monitor for any sudden drops.",
			Bullets: []string{"No urgent action needed.", "Compare zones to spot uneven watering."},
		}
	}
	return Advice{
		Tone:    ToneDefault,
		Message: "Monitor conditions and adjust irrigation based on your crop and soil type.",
		Bullets: []string{"Track trend changes.", "Compare zones to spot uneven watering."},
	}
}

// SoilLabel classifies average moisture alone, for the standalone soil
// status display. Boundaries are inclusive on the high side.
func SoilLabel(avgMoisture *float64) SoilStatus {
	if avgMoisture == nil {
		return SoilStatus{Label: "—", Tone: ToneDefault, Description: "No data yet."}
	}
	switch {
	case *avgMoisture >= 70:
		return SoilStatus{Label: "Excellent", Tone: ToneGood, Description: "Soil moisture is healthy. Maintain consistent watering."}
	case *avgMoisture >= 45:
		return SoilStatus{Label: "Good", Tone: ToneGood, Description: "Moisture looks okay. Monitor trend and weather."}
	case *avgMoisture >= 25:
		return SoilStatus{Label: "Fair", Tone: ToneWarn, Description: "Moisture is getting low. Consider watering soon."}
	default:
		return SoilStatus{Label: "Dry", Tone: ToneBad, Description: "Soil is too dry. Water recommended."}
	}
}

func humidityBullet(humidity *float64) string {
	if humidity == nil {
		return "Humidity is not available — adjust watering if winds are high."
	}
	return fmt.Sprintf("Humidity is %.0f%% — adjust watering if winds are high.", *humidity)
}
