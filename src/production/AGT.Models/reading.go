package agtmodels

import "time"

// Reading is one timestamped sample from a sensor. Readings are
// append-only and immutable once written.
type Reading struct {
	SensorID     string     `json:"sensor_id"`
	Timestamp    *time.Time `json:"timestamp"`
	SoilMoisture *float64   `json:"soil_moisture"`
	TempC        *float64   `json:"temp_c"`
}

// ReadingPoint is a chart-ready sample: ascending by time, with a local
// HH:MM label. Missing numeric fields have been substituted with 0 so
// the series length stays stable.
type ReadingPoint struct {
	Label     string     `json:"label"`
	Moisture  float64    `json:"moisture"`
	TempC     float64    `json:"temp_c"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
