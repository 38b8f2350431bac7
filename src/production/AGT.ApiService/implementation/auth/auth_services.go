package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	jwt "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/implementation/jwt"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	api_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/api"
	auth_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/auth"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
)

// AuthService aggregates auth operations
type AuthService struct {
	userRepo   interfaces.UserRepository
	jwtService *jwt.Service
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, jwtService *jwt.Service) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, req api_models.RegisterRequest) (*auth_models.User, error) {
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, agtmodels.E(agtmodels.KindInvalidInput, "username already exists")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, agtmodels.E(agtmodels.KindInvalidInput, "email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := auth_models.NewUser(req.Username, req.Email, string(hashedPassword), "user")
	return s.userRepo.Create(ctx, user)
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req api_models.LoginRequest) (*api_models.AuthResponse, *api_models.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return nil, nil, agtmodels.E(agtmodels.KindUnauthenticated, "invalid credentials")
	}
	if !user.Active {
		return nil, nil, agtmodels.E(agtmodels.KindUnauthenticated, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, agtmodels.E(agtmodels.KindUnauthenticated, "invalid credentials")
	}

	tokenPair, err := s.jwtService.GenerateTokens(user.UserID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	return &api_models.AuthResponse{
		AccessToken: tokenPair.AccessToken,
		TokenID:     tokenPair.TokenID,
		ExpiresAt:   tokenPair.ExpiresAt,
		UserID:      user.UserID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
	}, tokenPair, nil
}

// RefreshTokens uses a refresh token to mint a new access token
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*api_models.RefreshResponse, *api_models.TokenPair, error) {
	tokenPair, err := s.jwtService.RefreshTokens(ctx, refreshToken, s.userRepo)
	if err != nil {
		return nil, nil, err
	}

	return &api_models.RefreshResponse{
		AccessToken: tokenPair.AccessToken,
		TokenID:     tokenPair.TokenID,
		ExpiresAt:   tokenPair.ExpiresAt,
	}, tokenPair, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth_models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
