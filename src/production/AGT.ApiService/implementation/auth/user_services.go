package auth

import (
	"context"

	auth_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/auth"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
)

// UserService provides user profile operations
type UserService struct {
	userRepo interfaces.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*auth_models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the self-editable profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch auth_models.ProfileUpdate) (*auth_models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = patch.FirstName
	user.SecondName = patch.SecondName
	user.Phone = patch.Phone
	user.Location = patch.Location
	user.InterestedIn = patch.InterestedIn

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
