package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kvops-api/internal/config"
	"kvops-api/internal/handlers"
	"kvops-api/internal/middleware"
	"kvops-api/pkg/server"
)

// @title KV Operations API
// @version 1.0
// @description A JSON operation router over a named key-value store

// @host localhost:8081
// @BasePath /api/v1

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := server.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.StructuredLogger())
	engine.Use(middleware.CORS())
	engine.Use(middleware.ErrorHandler())
	engine.Use(middleware.RequestSizeLimit(1 << 20))

	routerConfig := &handlers.RouterConfig{
		Router:       container.Router,
		RateLimitRPS: cfg.RateLimit.RequestsPerSecond,
	}
	if cfg.Auth.Enabled {
		routerConfig.AuthService = middleware.NewAuthService(&middleware.AuthConfig{
			JWTSecret:     cfg.Auth.JWTSecret,
			TokenDuration: time.Duration(cfg.Auth.ExpiryHours) * time.Hour,
		})
	}
	handlers.SetupRoutes(engine, routerConfig)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		container.Logger.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	container.Logger.Info("Server exited")
}
