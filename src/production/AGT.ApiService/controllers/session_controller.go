package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	gate "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Gate"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
)

// SessionController exposes the per-user farm selection and the route
// admission decision the dashboard runs on every navigation.
type SessionController struct {
	resolver       *gate.Resolver
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewSessionController creates a new session controller
func NewSessionController(resolver *gate.Resolver, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *SessionController {
	return &SessionController{
		resolver:       resolver,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the session routes with Gin
func (h *SessionController) RegisterRoutes(router *gin.Engine) {
	session := router.Group("/session")
	{
		// Resolution must answer for anonymous callers too, so the
		// soft identity middleware is used here.
		session.GET("/resolution", h.authMiddleware.Identify(), h.GetResolution)
		session.PUT("/farm", h.authMiddleware.Authenticate(), h.SwitchFarm)
		session.DELETE("/farm", h.authMiddleware.Authenticate(), h.ClearSelection)
	}
}

// GetResolution runs the admission state machine for ?route= and
// returns the state, any redirect, and the admitted farm id.
func (h *SessionController) GetResolution(c *gin.Context) {
	route := c.Query("route")
	if route == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "route query parameter is required"})
		return
	}

	resolution := h.resolver.Resolve(c.Request.Context(), middleware.UserID(c), route)
	c.JSON(http.StatusOK, resolution)
}

type switchFarmRequest struct {
	FarmID string `json:"farm_id" binding:"required"`
}

func (h *SessionController) SwitchFarm(c *gin.Context) {
	var req switchFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resolver.SwitchFarm(c.Request.Context(), middleware.UserID(c), req.FarmID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"farm_id": req.FarmID})
}

func (h *SessionController) ClearSelection(c *gin.Context) {
	h.resolver.ClearSelection(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "selection cleared"})
}
