package synergy

import (
	"math"
	"sort"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
)

const (
	centralityMaxIter   = 1000
	centralityTolerance = 1e-6
	// Scores are compared after rounding so that float noise does not
	// reorder cards with equal centrality.
	centralityPrecision = 1e9
)

// Centrality is a card paired with its eigenvector centrality.
type Centrality struct {
	Card  *cube.Card
	Score float64
}

// EigenvectorCentrality computes eigenvector centrality by power iteration
// on (A + I), normalized to unit length. Iteration stops when the L1 change
// falls below n*1e-6 or after a fixed number of rounds; the last iterate is
// returned either way.
func EigenvectorCentrality(g *Graph) map[string]float64 {
	n := g.Len()
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	next := make([]float64, n)

	for iter := 0; iter < centralityMaxIter; iter++ {
		copy(next, x)
		for i, neighbors := range g.adj {
			for _, j := range neighbors {
				next[j] += x[i]
			}
		}

		norm := 0.0
		for _, v := range next {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}

		delta := 0.0
		for i := range next {
			next[i] /= norm
			delta += math.Abs(next[i] - x[i])
		}
		x, next = next, x
		if delta < float64(n)*centralityTolerance {
			break
		}
	}

	for i, c := range g.nodes {
		scores[c.Name] = x[i]
	}
	return scores
}

// SortedCentralities returns every node with its centrality, most central
// first. Ties are broken by card name.
func SortedCentralities(g *Graph) []Centrality {
	scores := EigenvectorCentrality(g)
	result := make([]Centrality, 0, len(scores))
	for _, c := range g.nodes {
		result = append(result, Centrality{Card: c, Score: scores[c.Name]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		si := math.Round(result[i].Score * centralityPrecision)
		sj := math.Round(result[j].Score * centralityPrecision)
		if si != sj {
			return si > sj
		}
		return result[i].Card.Name < result[j].Card.Name
	})
	return result
}
