package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"kvops-api/internal/middleware"
	"kvops-api/internal/router"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Router       *router.Router
	AuthService  *middleware.AuthService // nil disables authentication
	RateLimitRPS float64
}

// SetupRoutes configures all API routes
func SetupRoutes(engine *gin.Engine, config *RouterConfig) {
	operationHandler := NewOperationHandler(config.Router)

	// Swagger documentation
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "kvops-api",
			"operations": config.Router.Operations(),
		})
	})

	// API v1 routes
	v1 := engine.Group("/api/v1")
	if config.RateLimitRPS > 0 {
		burst := int(config.RateLimitRPS * 2)
		if burst < 1 {
			burst = 1
		}
		v1.Use(middleware.RateLimiter(config.RateLimitRPS, burst))
	}
	if config.AuthService != nil {
		v1.Use(middleware.Authentication(config.AuthService))
	}
	{
		v1.POST("/operations", operationHandler.Execute)
	}
}
