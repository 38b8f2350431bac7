package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	service "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/implementation/auth"
	api_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/api"
)

// AuthController handles authentication requests
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshTokens)
		auth.POST("/logout", h.Logout)
	}
}

// Register handles user registration
func (h *AuthController) Register(c *gin.Context) {
	var req api_models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.UserID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// Login handles user login
func (h *AuthController) Login(c *gin.Context) {
	var req api_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, tokenPair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	setRefreshCookie(c, tokenPair.RefreshToken, tokenPair.ExpiresAt)
	c.JSON(http.StatusOK, response)
}

// RefreshTokens handles token refresh
func (h *AuthController) RefreshTokens(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
		return
	}

	response, tokenPair, err := h.authService.RefreshTokens(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	setRefreshCookie(c, tokenPair.RefreshToken, tokenPair.ExpiresAt)
	c.JSON(http.StatusOK, response)
}

// Logout handles user logout
func (h *AuthController) Logout(c *gin.Context) {
	c.SetCookie(
		"refresh_token",
		"",
		-1,
		"/",
		"",
		false,
		true,
	)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func setRefreshCookie(c *gin.Context, token string, expiresAt int64) {
	c.SetCookie(
		"refresh_token",
		token,
		int(time.Until(time.Unix(expiresAt, 0)).Seconds()),
		"/",
		"",
		false, // Set to true in production with HTTPS
		true,  // HTTP only
	)
}
