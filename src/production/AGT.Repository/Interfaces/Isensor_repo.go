package interfaces

import (
	"context"
	"time"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

type SensorRepository interface {
	// Read sensors
	Get(ctx context.Context, sensorID string) (*agtmodels.Sensor, error)
	ListByFarm(ctx context.Context, farmID string) ([]agtmodels.Sensor, error)

	// Update the denormalized latest-reading block
	UpdateLatest(ctx context.Context, sensorID string, soilMoisture, tempC *float64, at time.Time) error
}
