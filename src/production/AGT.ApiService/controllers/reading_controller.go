package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	realtime "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Realtime"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
	telemetry "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Telemetry"
)

// ReadingController serves chart-ready reading series.
type ReadingController struct {
	farmRepo       interfaces.FarmRepository
	sensorRepo     interfaces.SensorRepository
	readingRepo    interfaces.ReadingRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewReadingController creates a new reading controller
func NewReadingController(
	farmRepo interfaces.FarmRepository,
	sensorRepo interfaces.SensorRepository,
	readingRepo interfaces.ReadingRepository,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *ReadingController {
	return &ReadingController{
		farmRepo:       farmRepo,
		sensorRepo:     sensorRepo,
		readingRepo:    readingRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the reading routes with Gin
func (h *ReadingController) RegisterRoutes(router *gin.Engine) {
	router.GET("/sensors/:sensor_id/readings", h.authMiddleware.Authenticate(), h.GetSeries)
}

// GetSeries returns up to window readings for a sensor as an ascending
// chart series. The page is fetched newest-first and re-ordered here.
func (h *ReadingController) GetSeries(c *gin.Context) {
	sensor, err := h.sensorRepo.Get(c.Request.Context(), c.Param("sensor_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	farm, err := h.farmRepo.Get(c.Request.Context(), sensor.FarmID)
	if err != nil {
		respondError(c, err)
		return
	}
	if farm.OwnerID != middleware.UserID(c) {
		respondError(c, agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user"))
		return
	}

	window := realtime.DefaultSeriesWindow
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive integer"})
			return
		}
		window = parsed
	}

	readings, err := h.readingRepo.LatestPage(c.Request.Context(), sensor.ID, window)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sensor_id": sensor.ID,
		"points":    telemetry.SeriesPoints(readings),
	})
}
