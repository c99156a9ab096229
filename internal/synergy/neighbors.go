package synergy

import "github.com/ramonehamilton/cube-drafter/internal/cube"

type pairKey struct {
	a, b string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// CommonNeighbors maps unordered card pairs to the cards adjacent to both in
// a reference synergy graph. It is read-only after construction and safe for
// concurrent readers.
type CommonNeighbors struct {
	pairs map[pairKey][]*cube.Card
}

// AllCommonNeighbors builds the synergy graph over cards once and records the
// common neighbors of every pair. Pairs where either card has no synergy
// edges have no common neighbors.
func AllCommonNeighbors(cards []*cube.Card) (*CommonNeighbors, error) {
	g, err := CreateGraph(cards)
	if err != nil {
		return nil, err
	}

	cn := &CommonNeighbors{pairs: make(map[pairKey][]*cube.Card)}
	for i := 0; i < len(cards)-1; i++ {
		ii, ok := g.index[cards[i].Name]
		if !ok {
			continue
		}
		for j := i + 1; j < len(cards); j++ {
			jj, ok := g.index[cards[j].Name]
			if !ok || ii == jj {
				continue
			}
			common := intersectSorted(g.adj[ii], g.adj[jj])
			if len(common) == 0 {
				continue
			}
			cn.pairs[newPairKey(cards[i].Name, cards[j].Name)] = g.cards(common)
		}
	}
	return cn, nil
}

// Get returns the common neighbors of a and b. The result is shared; callers
// must not modify it. Get(a, b) and Get(b, a) return the same cards.
func (cn *CommonNeighbors) Get(a, b *cube.Card) []*cube.Card {
	if cn == nil || a.Name == b.Name {
		return nil
	}
	return cn.pairs[newPairKey(a.Name, b.Name)]
}

// Len returns the number of pairs with at least one common neighbor.
func (cn *CommonNeighbors) Len() int {
	if cn == nil {
		return 0
	}
	return len(cn.pairs)
}

func intersectSorted(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
