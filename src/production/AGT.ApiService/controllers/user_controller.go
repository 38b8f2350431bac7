package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	service "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/implementation/auth"
	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	auth_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/auth"
)

// UserController handles user profile requests
type UserController struct {
	userService    *service.UserService
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewUserController creates a new user controller
func NewUserController(userService *service.UserService, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *UserController {
	return &UserController{
		userService:    userService,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the user routes with Gin
func (h *UserController) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/users", h.authMiddleware.Authenticate())
	{
		users.GET("/me", h.GetProfile)
		users.PUT("/me/profile", h.UpdateProfile)
	}
}

func (h *UserController) GetProfile(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserController) UpdateProfile(c *gin.Context) {
	var patch auth_models.ProfileUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.UserID(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
