// SPDX-License-Identifier: AGPL-3.0-only
package graph

import "sort"

// adjacency is an undirected weighted graph keyed by entity name.
type adjacency struct {
	nodes map[string]map[string]int
}

func newAdjacency() *adjacency {
	return &adjacency{nodes: make(map[string]map[string]int)}
}

func (a *adjacency) addEdge(u, v string) {
	if u == v {
		return
	}
	a.link(u, v)
	a.link(v, u)
}

func (a *adjacency) link(u, v string) {
	if a.nodes[u] == nil {
		a.nodes[u] = make(map[string]int)
	}
	a.nodes[u][v]++
}

func (a *adjacency) weight(u, v string) int {
	return a.nodes[u][v]
}

func (a *adjacency) degree(u string) int {
	return len(a.nodes[u])
}

// weightedDegree sums edge weights at u, the degree notion modularity uses.
func (a *adjacency) weightedDegree(u string) int {
	total := 0
	for _, w := range a.nodes[u] {
		total += w
	}
	return total
}

// totalWeight is the sum of all edge weights, each undirected edge counted
// once.
func (a *adjacency) totalWeight() int {
	total := 0
	for u, neighbors := range a.nodes {
		for v, w := range neighbors {
			if u < v {
				total += w
			}
		}
	}
	return total
}

func (a *adjacency) sortedNodes() []string {
	ids := make([]string, 0, len(a.nodes))
	for id := range a.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *adjacency) sortedEdges() []Edge {
	var edges []Edge
	for u, neighbors := range a.nodes {
		for v, w := range neighbors {
			if u < v {
				edges = append(edges, Edge{Source: u, Target: v, Weight: w})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
