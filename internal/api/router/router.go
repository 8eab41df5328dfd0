package router

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/denisAlshanov/ytgrab/internal/api/handlers"
	"github.com/denisAlshanov/ytgrab/internal/api/middleware"
	"github.com/denisAlshanov/ytgrab/internal/config"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
	server *http.Server
}

func NewRouter(cfg *config.Config, downloadHandler *handlers.DownloadHandler, healthHandler *handlers.HealthHandler) *Router {
	// Set Gin mode
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()

	// Add middleware
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.CorrelationIDMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))

	// Health endpoints
	health := engine.Group("/")
	{
		health.GET("/health", healthHandler.Health)
		health.GET("/ready", healthHandler.Readiness)
		health.GET("/live", healthHandler.Liveness)
	}

	// Swagger documentation
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group("/api")
	{
		api.POST("/download", downloadHandler.GetVideoDetails) // /api/download (details)
		api.PUT("/download", downloadHandler.StreamVideo)      // /api/download (stream)
	}

	return &Router{
		engine: engine,
		config: cfg,
		server: &http.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler: engine,
		},
	}
}

// Start serves until Shutdown is called. It returns nil after a graceful shutdown.
func (r *Router) Start() error {
	if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
