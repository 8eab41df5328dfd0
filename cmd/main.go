// Package main provides the entry point for the video grab service.
// @title Video Grab API
// @version 1.0
// @description Resolves the downloadable qualities of a public video and streams the chosen one back as a file.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:4000
// @BasePath /

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/denisAlshanov/ytgrab/docs" // Import for swagger docs
	"github.com/denisAlshanov/ytgrab/internal/api/handlers"
	"github.com/denisAlshanov/ytgrab/internal/api/router"
	"github.com/denisAlshanov/ytgrab/internal/config"
	"github.com/denisAlshanov/ytgrab/internal/services/downloader"
	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
	"github.com/denisAlshanov/ytgrab/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to configure logger: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting video grab service")

	// Initialize extractor
	extractor := youtube.NewClient(&cfg.Extractor)

	// Initialize downloader service
	downloaderService, err := downloader.NewDownloader(extractor, &cfg.Download)
	if err != nil {
		logger.Fatalf("Failed to initialize downloader: %v", err)
	}

	// Initialize handlers
	downloadHandler := handlers.NewDownloadHandler(downloaderService)
	healthHandler := handlers.NewHealthHandler()

	// Initialize router
	r := router.NewRouter(cfg, downloadHandler, healthHandler)

	// Start server
	go func() {
		logger.Infof("Server running on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := r.Start(); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := r.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shut down: %v", err)
	}

	logger.Info("Server shutdown complete")
}
