package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
	telemetry "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Telemetry"
)

// SensorController serves sensor snapshots with derived status fields.
type SensorController struct {
	farmRepo       interfaces.FarmRepository
	sensorRepo     interfaces.SensorRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewSensorController creates a new sensor controller
func NewSensorController(
	farmRepo interfaces.FarmRepository,
	sensorRepo interfaces.SensorRepository,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *SensorController {
	return &SensorController{
		farmRepo:       farmRepo,
		sensorRepo:     sensorRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the sensor routes with Gin
func (h *SensorController) RegisterRoutes(router *gin.Engine) {
	router.GET("/farms/:farm_id/sensors", h.authMiddleware.Authenticate(), h.ListFarmSensors)
	router.GET("/sensors/:sensor_id", h.authMiddleware.Authenticate(), h.GetSensor)
}

func (h *SensorController) ListFarmSensors(c *gin.Context) {
	farmID := c.Param("farm_id")
	if err := h.checkFarmAccess(c, farmID); err != nil {
		respondError(c, err)
		return
	}

	sensors, err := h.sensorRepo.ListByFarm(c.Request.Context(), farmID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sensors": telemetry.Views(time.Now(), sensors)})
}

func (h *SensorController) GetSensor(c *gin.Context) {
	sensor, err := h.sensorRepo.Get(c.Request.Context(), c.Param("sensor_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.checkFarmAccess(c, sensor.FarmID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, telemetry.View(time.Now(), *sensor))
}

// checkFarmAccess verifies the caller owns the farm a sensor hangs off.
func (h *SensorController) checkFarmAccess(c *gin.Context, farmID string) error {
	farm, err := h.farmRepo.Get(c.Request.Context(), farmID)
	if err != nil {
		return err
	}
	if farm.OwnerID != middleware.UserID(c) {
		return agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user")
	}
	return nil
}
