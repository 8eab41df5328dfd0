package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint. Overridden at build time with -ldflags.
var Version = "1.0.0"

type HealthHandler struct {
	startedAt time.Time
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startedAt: time.Now(),
	}
}

// Health godoc
// @Summary Health check endpoint
// @Description Check the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check if the service is ready to accept requests. The extractor is only contacted per request, so readiness has no dependencies to probe.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"ready":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
