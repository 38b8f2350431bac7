package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/controllers"
	container "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Container"
	gate "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Gate"
	realtime "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Realtime"
	implementation "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Repository/Implementation"
	weather "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Weather"

	// Auth imports
	authService "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/implementation/auth"
	jwt "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/implementation/jwt"
	authMiddleware "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.ApiService/middleware"
	api_models "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models/api"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting API Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := ctr.GetDatabase(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to connect to database")
	}
	mongoClient, err := ctr.GetMongoClient(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to get mongo client")
	}

	// Create repositories
	farmRepo := implementation.NewMongoFarmRepository(db)
	sensorRepo := implementation.NewMongoSensorRepository(db)
	readingRepo := implementation.NewMongoReadingRepository(db)
	userRepo := implementation.NewMongoUserRepository(db)

	// Get configuration
	config := ctr.GetConfig()

	// Initialize JWT service for token validation
	jwtConfig := api_models.Config{
		SecretKey:            config.Auth.JWTSecretKey,
		AccessTokenDuration:  config.Auth.AccessTokenDuration,
		RefreshTokenDuration: config.Auth.RefreshTokenDuration,
		Issuer:               config.Auth.JWTIssuer,
	}
	jwtService := jwt.NewService(jwtConfig)

	// Create auth middleware
	middlewareConfig := authMiddleware.DefaultConfig()
	authMiddlewareInstance := authMiddleware.NewAuthMiddleware(jwtService, middlewareConfig)

	// Initialize auth services
	authServiceInstance := authService.NewAuthService(userRepo, jwtService)
	userServiceInstance := authService.NewUserService(userRepo)

	// Session store and route admission
	sessionStore := ctr.GetSessionStore()
	resolver := gate.NewResolver(farmRepo, sessionStore, logger)

	// Realtime subscriptions over change streams
	realtimeSource := realtime.NewMongoSource(db, sensorRepo, readingRepo, logger)
	realtimeManager := realtime.NewManager(realtimeSource, logger)

	// Weather gateway
	weatherGateway := weather.NewGateway(&config.Weather, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	authController := controllers.NewAuthController(authServiceInstance)
	userController := controllers.NewUserController(userServiceInstance, logger, authMiddlewareInstance)
	farmController := controllers.NewFarmController(farmRepo, sensorRepo, readingRepo, weatherGateway, logger, authMiddlewareInstance)
	sensorController := controllers.NewSensorController(farmRepo, sensorRepo, logger, authMiddlewareInstance)
	readingController := controllers.NewReadingController(farmRepo, sensorRepo, readingRepo, logger, authMiddlewareInstance)
	sessionController := controllers.NewSessionController(resolver, logger, authMiddlewareInstance)
	streamController := controllers.NewStreamController(realtimeManager, farmRepo, sensorRepo, logger, authMiddlewareInstance)
	weatherController := controllers.NewWeatherController(weatherGateway, logger)
	internalController := controllers.NewInternalController(sensorRepo, readingRepo, logger, config.InternalAPISecret)
	healthController := controllers.NewHealthController(mongoClient, logger)

	authController.RegisterRoutes(router)
	userController.RegisterRoutes(router)
	farmController.RegisterRoutes(router)
	sensorController.RegisterRoutes(router)
	readingController.RegisterRoutes(router)
	sessionController.RegisterRoutes(router)
	streamController.RegisterRoutes(router)
	weatherController.RegisterRoutes(router)
	internalController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	// Get port from configuration
	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
