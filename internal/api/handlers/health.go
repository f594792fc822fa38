package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fastbreakhq/fastbreak/internal/services"
	"github.com/fastbreakhq/fastbreak/pkg/database"
)

type HealthHandler struct {
	db        *database.DB
	scheduler *services.SchedulerService
}

func NewHealthHandler(db *database.DB, scheduler *services.SchedulerService) *HealthHandler {
	return &HealthHandler{
		db:        db,
		scheduler: scheduler,
	}
}

// GetHealth returns basic health status - always returns 200 if server is running
// This is used for basic liveness probes
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "fastbreak",
	})
}

// GetReady reports readiness: the database must answer a ping.
func (h *HealthHandler) GetReady(c *gin.Context) {
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}

	status := gin.H{"status": "ready"}
	if h.scheduler != nil {
		status["scheduler"] = h.scheduler.Status()
	}
	c.JSON(http.StatusOK, status)
}
