// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fluffyriot/profilescope/internal/fetcher"
)

// SubmitFetchHandler queues a fetch for an account. Submitting the same
// account twice while a job is in flight returns the existing job rather
// than creating a second one; either way the caller gets a job id to poll.
func (h *Handler) SubmitFetchHandler(c *gin.Context) {
	var req submitFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle and platform are required"})
		return
	}

	handle := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(req.Handle), "@"))
	if handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "handle must not be empty"})
		return
	}

	platform, ok := fetcher.NormalizePlatform(req.Platform)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform: " + req.Platform})
		return
	}

	job, err := h.Worker.Submit(c.Request.Context(), handle, platform)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, toJobResponse(job))
}

func (h *Handler) GetJobHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.DB.GetFetchJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}
