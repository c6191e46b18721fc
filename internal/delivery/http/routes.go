package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ShivamTripathi028/rak-recommender-project/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Both recommend routes draw from the same per-IP buckets
	rateLimit := RateLimitMiddleware(cfg.RateLimit.PerIP)
	router.POST("/recommend", rateLimit, handler.Recommend)

	// API v1 routes
	v1 := router.Group("/api/v1", rateLimit)
	{
		v1.POST("/recommend", handler.Recommend)
	}

	return router
}
