package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	advisory "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Advisory"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	realtime "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Realtime"
	interfaces "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Interfaces"
	telemetry "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Telemetry"
	weather "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Weather"
)

// FarmController handles farm directory requests
type FarmController struct {
	farmRepo       interfaces.FarmRepository
	sensorRepo     interfaces.SensorRepository
	readingRepo    interfaces.ReadingRepository
	weatherGateway *weather.Gateway
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewFarmController creates a new farm controller
func NewFarmController(
	farmRepo interfaces.FarmRepository,
	sensorRepo interfaces.SensorRepository,
	readingRepo interfaces.ReadingRepository,
	weatherGateway *weather.Gateway,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *FarmController {
	return &FarmController{
		farmRepo:       farmRepo,
		sensorRepo:     sensorRepo,
		readingRepo:    readingRepo,
		weatherGateway: weatherGateway,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the farm routes with Gin
func (h *FarmController) RegisterRoutes(router *gin.Engine) {
	// Listing is soft-authenticated: anonymous callers get an empty
	// list rather than a 401.
	router.GET("/farms", h.authMiddleware.Identify(), h.ListFarms)

	farms := router.Group("/farms", h.authMiddleware.Authenticate())
	{
		farms.POST("", h.CreateFarm)
		farms.GET("/:farm_id", h.GetFarm)
		farms.PATCH("/:farm_id", h.UpdateFarm)
		farms.GET("/:farm_id/advice", h.GetAdvice)
	}
}

func (h *FarmController) ListFarms(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"farms": []agtmodels.Farm{}})
		return
	}
	farms, err := h.farmRepo.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"farms": farms})
}

func (h *FarmController) CreateFarm(c *gin.Context) {
	var input agtmodels.FarmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	farm, err := h.farmRepo.Create(c.Request.Context(), middleware.UserID(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithField("farm_id", farm.ID).Info("farm created")
	c.JSON(http.StatusCreated, farm)
}

func (h *FarmController) GetFarm(c *gin.Context) {
	farm, err := h.ownedFarm(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

func (h *FarmController) UpdateFarm(c *gin.Context) {
	var patch agtmodels.FarmUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	farm, err := h.farmRepo.Update(c.Request.Context(), c.Param("farm_id"), middleware.UserID(c), &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

// GetAdvice composes the dashboard summary: the primary sensor's
// series average joined with live weather for the farm's location.
// Weather failures degrade to null fields rather than failing the
// request; advice still renders from moisture alone.
func (h *FarmController) GetAdvice(c *gin.Context) {
	farm, err := h.ownedFarm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()

	var avgMoisture *float64
	sensors, err := h.sensorRepo.ListByFarm(ctx, farm.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(sensors) > 0 {
		readings, err := h.readingRepo.LatestPage(ctx, sensors[0].ID, realtime.DefaultSeriesWindow)
		if err != nil {
			respondError(c, err)
			return
		}
		avgMoisture = telemetry.AverageMoisture(telemetry.SeriesPoints(readings))
	}

	var snapshot *agtmodels.WeatherSnapshot
	if farm.Location != "" {
		snapshot, err = h.weatherGateway.Current(ctx, farm.Location)
		if err != nil {
			h.logger.WithError(err).WithField("farm_id", farm.ID).Warn("weather unavailable for advice")
			snapshot = nil
		}
	}

	var precipitation, humidity *float64
	if snapshot != nil {
		precipitation = snapshot.PrecipitationMm
		humidity = snapshot.HumidityPercent
	}

	advice := advisory.Advise(avgMoisture, precipitation, humidity)

	c.JSON(http.StatusOK, gin.H{
		"farm_id":      farm.ID,
		"avg_moisture": avgMoisture,
		"soil_status":  advisory.SoilLabel(avgMoisture),
		"advice":       advice,
		"weather":      snapshot,
	})
}

// ownedFarm loads the :farm_id farm and enforces ownership.
func (h *FarmController) ownedFarm(c *gin.Context) (*agtmodels.Farm, error) {
	farm, err := h.farmRepo.Get(c.Request.Context(), c.Param("farm_id"))
	if err != nil {
		return nil, err
	}
	if farm.OwnerID != middleware.UserID(c) {
		return nil, agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user")
	}
	return farm, nil
}
