// SPDX-License-Identifier: AGPL-3.0-only
package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/textutil"
)

type Store interface {
	GetPostsByProfile(ctx context.Context, profileID uuid.UUID) ([]database.Post, error)
}

// Builder turns a profile's posts into an entity co-occurrence graph:
// nodes are entities (hashtags, mentions, names), an edge weight counts the
// posts mentioning both endpoints.
type Builder struct {
	store Store
}

func NewBuilder(store Store) *Builder {
	return &Builder{store: store}
}

type Node struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Cluster int     `json:"cluster"`
	Degree  int     `json:"degree"`
}

type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

type Graph struct {
	Nodes            []Node   `json:"nodes"`
	Edges            []Edge   `json:"edges"`
	ClusterSummaries []string `json:"cluster_summaries"`
}

var clusterPalette = []string{
	"#007bff", "#28a745", "#17a2b8", "#ffc107", "#dc3545", "#6f42c1", "#20c997",
}

const (
	hashtagColor = "#007bff"
	mentionColor = "#17a2b8"
)

// Build returns nil (no error) when the posts yield no entities at all.
func (b *Builder) Build(ctx context.Context, profileID uuid.UUID) (*Graph, error) {
	posts, err := b.store.GetPostsByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	adj := newAdjacency()
	for _, post := range posts {
		if post.Content == "" {
			continue
		}
		entities := textutil.ExtractEntities(post.Content)
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				adj.addEdge(entities[i], entities[j])
			}
		}
	}

	if len(adj.nodes) == 0 {
		return nil, nil
	}

	communities := detectCommunities(adj)

	clusterOf := make(map[string]int)
	for i, comm := range communities {
		for _, node := range comm {
			clusterOf[node] = i
		}
	}

	g := &Graph{}

	labeled := make(map[string]struct{})
	for i, comm := range communities {
		top := topByDegree(adj, comm, 3)
		for _, node := range top {
			labeled[node] = struct{}{}
		}
		g.ClusterSummaries = append(g.ClusterSummaries,
			fmt.Sprintf("Cluster %d: top entities — %s", i, strings.Join(top, ", ")))
	}

	for _, id := range adj.sortedNodes() {
		degree := adj.degree(id)
		node := Node{
			ID:      id,
			Size:    15 + float64(degree)*2.5,
			Color:   nodeColor(id, clusterOf[id]),
			Cluster: clusterOf[id],
			Degree:  degree,
		}
		if _, ok := labeled[id]; ok {
			node.Label = id
		}
		g.Nodes = append(g.Nodes, node)
	}

	for _, e := range adj.sortedEdges() {
		g.Edges = append(g.Edges, e)
	}

	return g, nil
}

func nodeColor(id string, cluster int) string {
	switch {
	case strings.HasPrefix(id, "#"):
		return hashtagColor
	case strings.HasPrefix(id, "@"):
		return mentionColor
	default:
		return clusterPalette[cluster%len(clusterPalette)]
	}
}

func topByDegree(adj *adjacency, comm []string, n int) []string {
	ranked := append([]string(nil), comm...)
	sort.Slice(ranked, func(i, j int) bool {
		di, dj := adj.degree(ranked[i]), adj.degree(ranked[j])
		if di != dj {
			return di > dj
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
