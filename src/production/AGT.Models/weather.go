package agtmodels

// WeatherSnapshot is the normalized result of a geocode + current
// conditions lookup. Numeric fields are pointers: an upstream that
// omitted a value yields an explicit JSON null, never a missing key.
type WeatherSnapshot struct {
	LocationLabel   string   `json:"location"`
	TempC           *float64 `json:"tempC"`
	HumidityPercent *float64 `json:"humidity"`
	PrecipitationMm *float64 `json:"precipitationMm"`
	Description     *string  `json:"description"`
	ObservedAt      *string  `json:"asOf"`
}
