package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
)

// HealthController handles liveness and readiness probes
type HealthController struct {
	mongoClient *mongo.Client
	logger      *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(mongoClient *mongo.Client, logger *logger.Logger) *HealthController {
	return &HealthController{
		mongoClient: mongoClient,
		logger:      logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	dbOK := c.mongoClient.Ping(pingCtx, readpref.Primary()) == nil
	if !dbOK {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     false,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"db":     true,
	})
}
