// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/graph"
)

func (h *Handler) GetAnalysisHandler(c *gin.Context) {
	profile, ok := h.lookupProfile(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	a, err := h.DB.GetBehaviorAnalysisByProfile(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not ready"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.DB.GetAccountSnapshot(ctx, database.GetAccountSnapshotParams{
		ProfileID: profile.ID,
		Platform:  profile.Platform,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": toAnalysisResponse(a),
		"snapshot": gin.H{
			"followers":       snap.Followers,
			"following":       snap.Following,
			"posts_collected": snap.PostsCollected,
			"is_private":      snap.IsPrivate,
			"verified":        snap.Verified,
			"updated_at":      snap.UpdatedAt,
		},
	})
}

// GetGraphHandler builds the entity co-occurrence graph on demand from the
// stored posts. Profiles whose posts carry no entities get an empty graph,
// not an error.
func (h *Handler) GetGraphHandler(c *gin.Context) {
	profile, ok := h.lookupProfile(c)
	if !ok {
		return
	}

	g, err := h.Graph.Build(c.Request.Context(), profile.ID)
	if err != nil {
		log.Printf("building entity graph for %s/%s: %v", profile.Platform, profile.Handle, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if g == nil {
		g = &graph.Graph{Nodes: []graph.Node{}, Edges: []graph.Edge{}, ClusterSummaries: []string{}}
	}

	c.JSON(http.StatusOK, g)
}

func (h *Handler) GetActivityHandler(c *gin.Context) {
	profile, ok := h.lookupProfile(c)
	if !ok {
		return
	}

	report, err := h.Engine.ActivityReport(c.Request.Context(), profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
