package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	weather "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Weather"
)

// WeatherController proxies location lookups to the weather gateway.
type WeatherController struct {
	gateway *weather.Gateway
	logger  *logger.Logger
}

// NewWeatherController creates a new weather controller
func NewWeatherController(gateway *weather.Gateway, logger *logger.Logger) *WeatherController {
	return &WeatherController{
		gateway: gateway,
		logger:  logger,
	}
}

// RegisterRoutes registers the weather routes with Gin
func (h *WeatherController) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/weather", h.GetCurrent)
}

// GetCurrent geocodes ?location= and returns current conditions. All
// numeric fields are emitted even when null so clients can render
// placeholder dashes without shape checks.
func (h *WeatherController) GetCurrent(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location query parameter is required"})
		return
	}

	snapshot, err := h.gateway.Current(c.Request.Context(), location)
	if err != nil {
		if agtmodels.KindOf(err) == agtmodels.KindUnavailable {
			h.logger.WithError(err).Warn("weather upstream failure")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
