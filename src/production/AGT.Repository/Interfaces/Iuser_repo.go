package interfaces

import (
	"context"

	auth_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/auth"
)

type UserRepository interface {
	// Create user
	Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error)

	// Read users
	GetByID(ctx context.Context, userID string) (*auth_models.User, error)
	GetByUsername(ctx context.Context, username string) (*auth_models.User, error)
	GetByEmail(ctx context.Context, email string) (*auth_models.User, error)

	// Update user
	Update(ctx context.Context, user *auth_models.User) error
}
