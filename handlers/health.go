package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and process uptime.
type HealthHandler struct {
	start       time.Time
	environment string
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{start: time.Now(), environment: environment}
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/api/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.start).Round(time.Second).Seconds(),
		"environment": h.environment,
	})
}
