package interfaces

import (
	"context"

	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
)

type FarmRepository interface {
	// Create farm
	Create(ctx context.Context, ownerID string, input *agtmodels.FarmInput) (*agtmodels.Farm, error)

	// Read farms
	Get(ctx context.Context, farmID string) (*agtmodels.Farm, error)
	ListByOwner(ctx context.Context, ownerID string) ([]agtmodels.Farm, error)

	// Update farm (editable fields only)
	Update(ctx context.Context, farmID, ownerID string, patch *agtmodels.FarmUpdate) (*agtmodels.Farm, error)
}
