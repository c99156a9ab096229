package synergy

import (
	"sort"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
)

// Community is a group of cards found by modularity clustering.
type Community struct {
	Members       []*cube.Card
	InternalEdges int
}

// Density returns internal edges per member.
func (c Community) Density() float64 {
	if len(c.Members) == 0 {
		return 0
	}
	return float64(c.InternalEdges) / float64(len(c.Members))
}

// GreedyModularityCommunities partitions the graph with Clauset-Newman-Moore
// greedy modularity maximization. Starting from singletons, the connected
// pair of communities with the largest modularity gain is merged until no
// merge improves modularity. Ties go to the pair found first in node order.
//
// Every node appears in exactly one community. Communities are returned
// largest first; members keep node order. A graph without edges yields one
// singleton per node.
func GreedyModularityCommunities(g *Graph) [][]*cube.Card {
	n := g.Len()
	if n == 0 {
		return nil
	}

	members := make([][]int, n)
	alive := make([]bool, n)
	degree := make([]int64, n)
	between := make([][]int64, n)
	for i := range members {
		members[i] = []int{i}
		alive[i] = true
		degree[i] = int64(len(g.adj[i]))
		between[i] = make([]int64, n)
		for _, j := range g.adj[i] {
			between[i][j] = 1
		}
	}

	// Gain of merging i and j is (2m*e_ij - d_i*d_j) / 2m^2; only the
	// numerator is needed to compare candidates.
	twoM := int64(2 * g.EdgeCount())
	for twoM > 0 {
		bestI, bestJ := -1, -1
		var bestGain int64
		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !alive[j] || between[i][j] == 0 {
					continue
				}
				gain := twoM*between[i][j] - degree[i]*degree[j]
				if bestI < 0 || gain > bestGain {
					bestI, bestJ, bestGain = i, j, gain
				}
			}
		}
		if bestI < 0 || bestGain <= 0 {
			break
		}

		members[bestI] = append(members[bestI], members[bestJ]...)
		degree[bestI] += degree[bestJ]
		for k := 0; k < n; k++ {
			if k == bestI || k == bestJ {
				continue
			}
			between[bestI][k] += between[bestJ][k]
			between[k][bestI] = between[bestI][k]
		}
		alive[bestJ] = false
		members[bestJ] = nil
	}

	var groups [][]int
	for i := 0; i < n; i++ {
		if alive[i] {
			sort.Ints(members[i])
			groups = append(groups, members[i])
		}
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return len(groups[a]) > len(groups[b])
	})

	result := make([][]*cube.Card, len(groups))
	for k, group := range groups {
		result[k] = g.cards(group)
	}
	return result
}

// TopCommunities returns the non-singleton communities of g ranked by
// internal edges per member, densest first. Equal densities keep the
// size order of GreedyModularityCommunities.
func TopCommunities(g *Graph) []Community {
	var result []Community
	for _, members := range GreedyModularityCommunities(g) {
		if len(members) < 2 {
			continue
		}
		result = append(result, Community{
			Members:       members,
			InternalEdges: g.Subgraph(members).EdgeCount(),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Density() > result[j].Density()
	})
	return result
}
