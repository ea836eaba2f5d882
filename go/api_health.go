package shipmentserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthAPI reports liveness.
type HealthAPI struct {
	started time.Time
}

// NewHealthAPI records the process start time.
func NewHealthAPI() HealthAPI {
	return HealthAPI{started: time.Now()}
}

// Get /api/health
func (api *HealthAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(api.started).Seconds()),
	})
}
