package agtmodels

import "time"

// SensorStatus is derived from reading staleness, never persisted.
type SensorStatus string

const (
	StatusOnline  SensorStatus = "online"
	StatusWarning SensorStatus = "warning"
	StatusOffline SensorStatus = "offline"
)

// LatestReading is the most recent sample embedded on a sensor document.
// Numeric fields are pointers because devices report moisture-only or
// temperature-only payloads.
type LatestReading struct {
	SoilMoisture *float64   `json:"soil_moisture"`
	TempC        *float64   `json:"temp_c"`
	Timestamp    *time.Time `json:"timestamp"`
}

// Sensor is the canonical sensor record as stored, before any
// staleness derivation.
type Sensor struct {
	ID        string         `json:"id"`
	FarmID    string         `json:"farm_id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	ZoneLabel string         `json:"zone"`
	Latest    *LatestReading `json:"latest,omitempty"`
}

// SensorView is a sensor plus its derived presentation fields. This is
// what snapshots, subscriptions and list endpoints return.
type SensorView struct {
	Sensor
	Status   SensorStatus `json:"status"`
	LastSeen string       `json:"last_seen"`
}
