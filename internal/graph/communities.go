// SPDX-License-Identifier: AGPL-3.0-only
package graph

import "sort"

// detectCommunities runs greedy modularity agglomeration: every node starts
// as its own community, then the connected pair whose merge gains the most
// modularity is folded together until no merge helps. If that collapses to
// a single trivial grouping the whole node set is one community, which is
// also the fallback for degenerate graphs.
func detectCommunities(adj *adjacency) [][]string {
	nodes := adj.sortedNodes()
	m := float64(adj.totalWeight())
	if m == 0 || len(nodes) < 2 {
		return [][]string{nodes}
	}

	comms := make([][]string, len(nodes))
	for i, n := range nodes {
		comms[i] = []string{n}
	}

	for len(comms) > 1 {
		bestGain := 0.0
		bestA, bestB := -1, -1

		for i := 0; i < len(comms); i++ {
			for j := i + 1; j < len(comms); j++ {
				between := betweenWeight(adj, comms[i], comms[j])
				if between == 0 {
					continue
				}
				da := communityDegree(adj, comms[i])
				db := communityDegree(adj, comms[j])
				gain := float64(between)/m - da*db/(2*m*m)
				if gain > bestGain {
					bestGain = gain
					bestA, bestB = i, j
				}
			}
		}

		if bestA < 0 {
			break
		}

		merged := append(append([]string(nil), comms[bestA]...), comms[bestB]...)
		sort.Strings(merged)
		next := make([][]string, 0, len(comms)-1)
		for i, c := range comms {
			if i != bestA && i != bestB {
				next = append(next, c)
			}
		}
		comms = append(next, merged)
	}

	// order communities by size desc then first member, so cluster ids are
	// stable run to run
	sort.Slice(comms, func(i, j int) bool {
		if len(comms[i]) != len(comms[j]) {
			return len(comms[i]) > len(comms[j])
		}
		return comms[i][0] < comms[j][0]
	})

	return comms
}

func betweenWeight(adj *adjacency, a, b []string) int {
	total := 0
	for _, u := range a {
		for _, v := range b {
			total += adj.weight(u, v)
		}
	}
	return total
}

func communityDegree(adj *adjacency, comm []string) float64 {
	total := 0
	for _, n := range comm {
		total += adj.weightedDegree(n)
	}
	return float64(total)
}
