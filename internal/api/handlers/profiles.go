// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/fetcher"
)

// lookupProfile resolves the :platform/:handle path pair to a stored
// profile, writing the error response itself. The bool reports success.
func (h *Handler) lookupProfile(c *gin.Context) (database.Profile, bool) {
	platform, ok := fetcher.NormalizePlatform(c.Param("platform"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform: " + c.Param("platform")})
		return database.Profile{}, false
	}
	handle := strings.TrimPrefix(c.Param("handle"), "@")

	profile, err := h.DB.GetProfileByHandleAndPlatform(c.Request.Context(), database.GetProfileByHandleAndPlatformParams{
		Handle:   handle,
		Platform: platform,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return database.Profile{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return database.Profile{}, false
	}
	return profile, true
}

func (h *Handler) GetProfileHandler(c *gin.Context) {
	profile, ok := h.lookupProfile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	snap, err := h.DB.GetAccountSnapshot(ctx, database.GetAccountSnapshotParams{
		ProfileID: profile.ID,
		Platform:  profile.Platform,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	posts, err := h.DB.GetPostsByProfile(ctx, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile, snap, posts))
}

func (h *Handler) DeleteProfileHandler(c *gin.Context) {
	platform, ok := fetcher.NormalizePlatform(c.Param("platform"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform: " + c.Param("platform")})
		return
	}
	handle := strings.TrimPrefix(c.Param("handle"), "@")

	existed, err := h.DB.DeleteProfile(c.Request.Context(), database.DeleteProfileParams{
		Handle:   handle,
		Platform: platform,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	log.Printf("purged profile %s/%s", platform, handle)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
