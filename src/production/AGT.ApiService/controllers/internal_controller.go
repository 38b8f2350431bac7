package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
)

// InternalController handles endpoints reserved for the ingestor
// service. These sit behind the shared-secret middleware, never user
// auth.
type InternalController struct {
	sensorRepo  interfaces.SensorRepository
	readingRepo interfaces.ReadingRepository
	logger      *logger.Logger
	secret      string
}

// NewInternalController creates a new internal controller
func NewInternalController(sensorRepo interfaces.SensorRepository, readingRepo interfaces.ReadingRepository, logger *logger.Logger, secret string) *InternalController {
	return &InternalController{
		sensorRepo:  sensorRepo,
		readingRepo: readingRepo,
		logger:      logger,
		secret:      secret,
	}
}

// RegisterRoutes registers the internal routes with Gin
func (c *InternalController) RegisterRoutes(router *gin.Engine) {
	internal := router.Group("/internal", middleware.ServiceAuthMiddleware(c.secret))
	{
		internal.POST("/validate-sensor", c.ValidateSensor)
		internal.POST("/readings", c.CreateReadings)
	}
}

// ValidateSensorRequest represents the request to validate a sensor
type ValidateSensorRequest struct {
	SensorID string `json:"sensor_id" binding:"required"`
}

// ValidateSensorResponse represents the response from sensor validation
type ValidateSensorResponse struct {
	Exists bool   `json:"exists"`
	FarmID string `json:"farm_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidateSensor checks if a sensor exists
func (c *InternalController) ValidateSensor(ctx *gin.Context) {
	var req ValidateSensorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ValidateSensorResponse{
			Exists: false,
			Error:  "Invalid request: " + err.Error(),
		})
		return
	}

	sensor, err := c.sensorRepo.Get(ctx, req.SensorID)
	if err != nil {
		ctx.JSON(http.StatusOK, ValidateSensorResponse{Exists: false})
		return
	}

	ctx.JSON(http.StatusOK, ValidateSensorResponse{
		Exists: true,
		FarmID: sensor.FarmID,
	})
}

// IngestReading is one reading as posted by the ingestor
type IngestReading struct {
	SensorID     string   `json:"sensor_id" binding:"required"`
	Ts           string   `json:"ts" binding:"required"`
	SoilMoisture *float64 `json:"soil_moisture"`
	TempC        *float64 `json:"temp_c"`
}

// CreateReadingsRequest represents a batch of readings
type CreateReadingsRequest struct {
	Readings []IngestReading `json:"readings" binding:"required,min=1"`
}

// CreateReadingsResponse represents the response from reading creation
type CreateReadingsResponse struct {
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Error    string `json:"error,omitempty"`
}

// CreateReadings validates each reading's sensor, appends the reading,
// and refreshes the sensor's embedded latest block. Unknown sensors are
// counted as rejected without failing the batch.
func (c *InternalController) CreateReadings(ctx *gin.Context) {
	var req CreateReadingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, CreateReadingsResponse{
			Error: "Invalid request: " + err.Error(),
		})
		return
	}

	accepted := 0
	rejected := 0
	batch := make([]agtmodels.Reading, 0, len(req.Readings))
	latestBySensor := map[string]agtmodels.Reading{}

	for _, in := range req.Readings {
		ts, err := time.Parse(time.RFC3339, in.Ts)
		if err != nil {
			rejected++
			continue
		}
		if _, err := c.sensorRepo.Get(ctx, in.SensorID); err != nil {
			rejected++
			continue
		}

		reading := agtmodels.Reading{
			SensorID:     in.SensorID,
			Timestamp:    &ts,
			SoilMoisture: in.SoilMoisture,
			TempC:        in.TempC,
		}
		batch = append(batch, reading)
		accepted++

		prev, seen := latestBySensor[in.SensorID]
		if !seen || prev.Timestamp.Before(ts) {
			latestBySensor[in.SensorID] = reading
		}
	}

	if len(batch) > 0 {
		if err := c.readingRepo.InsertMany(ctx, batch); err != nil {
			c.logger.WithError(err).Error("reading batch insert failed")
			ctx.JSON(statusFor(err), CreateReadingsResponse{Error: err.Error()})
			return
		}
	}

	for sensorID, reading := range latestBySensor {
		if err := c.sensorRepo.UpdateLatest(ctx, sensorID, reading.SoilMoisture, reading.TempC, *reading.Timestamp); err != nil {
			c.logger.WithError(err).WithField("sensor_id", sensorID).Warn("latest update failed")
		}
	}

	ctx.JSON(http.StatusOK, CreateReadingsResponse{
		Accepted: accepted,
		Rejected: rejected,
	})
}
