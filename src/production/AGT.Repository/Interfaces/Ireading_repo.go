package interfaces

import (
	"context"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

type ReadingRepository interface {
	// Create readings
	Insert(ctx context.Context, reading *agtmodels.Reading) error
	InsertMany(ctx context.Context, readings []agtmodels.Reading) error

	// LatestPage returns up to window readings for a sensor,
	// newest first.
	LatestPage(ctx context.Context, sensorID string, window int) ([]agtmodels.Reading, error)
}
