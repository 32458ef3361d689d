// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheckHandler reports per-dependency readiness: the record store must
// answer a ping and the job loop must be running for the service to count as
// healthy. The renderer is reported but never fails the check, since the
// deployment may run with browser rendering disabled on purpose.
func (h *Handler) HealthCheckHandler(c *gin.Context) {
	checks := gin.H{
		"database": "ok",
		"worker":   "ok",
		"renderer": "enabled",
	}
	healthy := true

	if h.DBConn == nil {
		checks["database"] = "not initialized"
		healthy = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DBConn.PingContext(ctx); err != nil {
			checks["database"] = "ping failed: " + err.Error()
			healthy = false
		}
	}

	if h.Worker == nil || !h.Worker.Running() {
		checks["worker"] = "stopped"
		healthy = false
	}

	if h.Config != nil && h.Config.DisableRender {
		checks["renderer"] = "disabled"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
