package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopscout/backend/config"
	"github.com/shopscout/backend/internal/infrastructure/throttle"
)

// SetupRouter creates and configures the Gin router.
// The returned store backs the per-IP limit and should be stopped on shutdown.
func SetupRouter(cfg *config.Config, handler *Handler) (*gin.Engine, *throttle.Store) {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Queries may contain an encoded "/"
	router.UseRawPath = true
	router.UnescapePathValues = true

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	perIP := cfg.RateLimit.PerIP
	limiter := throttle.NewStore(throttle.PerMinute(perIP), perIP, time.Hour)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(limiter))
	{
		api.GET("/platforms", handler.ListPlatforms)
		api.GET("/products/:platform/:query", handler.SearchProducts)
	}

	return router, limiter
}
