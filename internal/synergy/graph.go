// Package synergy builds synergy graphs over cards and analyzes them.
//
// Two cards share a synergy edge when, for some theme, one is tagged as an
// Enabler and the other as a Payoff. Graphs are immutable snapshots; to
// "update" a graph, build a new one over a different card subset.
package synergy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
)

// ErrInvalidTagScheme is returned when a theme has more than two role
// partitions. Only the two-role Enabler/Payoff scheme is supported.
var ErrInvalidTagScheme = errors.New("invalid tag scheme: only two roles per theme are supported")

// Graph is an undirected synergy graph over cards. Node order is the order
// cards were first seen during construction.
type Graph struct {
	nodes []*cube.Card
	index map[string]int
	adj   [][]int // sorted neighbor indices
	edges int
}

// Edge is an unordered pair of cards.
type Edge struct {
	A, B *cube.Card
}

type options struct {
	removeIsolated bool
}

// Option configures graph construction.
type Option func(*options)

// KeepIsolated keeps cards without any synergy edge as nodes.
func KeepIsolated() Option {
	return func(o *options) {
		o.removeIsolated = false
	}
}

// CreateGraph builds the synergy graph for cards. By default cards without
// any synergy edge are dropped.
func CreateGraph(cards []*cube.Card, opts ...Option) (*Graph, error) {
	o := options{removeIsolated: true}
	for _, opt := range opts {
		opt(&o)
	}

	nodes := make([]*cube.Card, 0, len(cards))
	index := make(map[string]int, len(cards))
	for _, c := range cards {
		if _, seen := index[c.Name]; seen {
			continue
		}
		index[c.Name] = len(nodes)
		nodes = append(nodes, c)
	}

	// theme -> role -> members, both in first-seen order
	type partition struct {
		role    cube.Role
		members []int
		seen    map[int]bool
	}
	var themeOrder []string
	themes := make(map[string][]*partition)

	for i, c := range nodes {
		for _, tag := range c.Tags {
			parts, ok := themes[tag.Theme]
			if !ok {
				themeOrder = append(themeOrder, tag.Theme)
			}
			var p *partition
			for _, candidate := range parts {
				if candidate.role == tag.Role {
					p = candidate
					break
				}
			}
			if p == nil {
				p = &partition{role: tag.Role, seen: make(map[int]bool)}
				themes[tag.Theme] = append(parts, p)
			}
			if !p.seen[i] {
				p.seen[i] = true
				p.members = append(p.members, i)
			}
		}
	}

	adjSet := make([]map[int]bool, len(nodes))
	for i := range adjSet {
		adjSet[i] = make(map[int]bool)
	}

	for _, theme := range themeOrder {
		parts := themes[theme]
		if len(parts) > 2 {
			return nil, fmt.Errorf("%w: theme %q has %d roles", ErrInvalidTagScheme, theme, len(parts))
		}
		if len(parts) < 2 {
			continue
		}
		for _, i := range parts[0].members {
			for _, j := range parts[1].members {
				if i == j {
					continue
				}
				adjSet[i][j] = true
				adjSet[j][i] = true
			}
		}
	}

	g := newGraph(nodes, adjSet)
	if o.removeIsolated {
		return g.withoutIsolated(), nil
	}
	return g, nil
}

func newGraph(nodes []*cube.Card, adjSet []map[int]bool) *Graph {
	g := &Graph{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
		adj:   make([][]int, len(nodes)),
	}
	degreeSum := 0
	for i, c := range nodes {
		g.index[c.Name] = i
		neighbors := make([]int, 0, len(adjSet[i]))
		for j := range adjSet[i] {
			neighbors = append(neighbors, j)
		}
		sort.Ints(neighbors)
		g.adj[i] = neighbors
		degreeSum += len(neighbors)
	}
	g.edges = degreeSum / 2
	return g
}

// induced returns the subgraph over the node indices keep, in graph order.
func (g *Graph) induced(keep func(i int) bool) *Graph {
	remap := make(map[int]int, len(g.nodes))
	nodes := make([]*cube.Card, 0, len(g.nodes))
	for i, c := range g.nodes {
		if keep(i) {
			remap[i] = len(nodes)
			nodes = append(nodes, c)
		}
	}

	adjSet := make([]map[int]bool, len(nodes))
	for i := range adjSet {
		adjSet[i] = make(map[int]bool)
	}
	for old, newIdx := range remap {
		for _, nb := range g.adj[old] {
			if mapped, ok := remap[nb]; ok {
				adjSet[newIdx][mapped] = true
			}
		}
	}
	return newGraph(nodes, adjSet)
}

func (g *Graph) withoutIsolated() *Graph {
	return g.induced(func(i int) bool { return len(g.adj[i]) > 0 })
}

// Subgraph returns the graph induced by the given cards. Cards not in g are
// ignored; isolated nodes are kept.
func (g *Graph) Subgraph(cards []*cube.Card) *Graph {
	want := make(map[int]bool, len(cards))
	for _, c := range cards {
		if i, ok := g.index[c.Name]; ok {
			want[i] = true
		}
	}
	return g.induced(func(i int) bool { return want[i] })
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Nodes returns the cards in node order.
func (g *Graph) Nodes() []*cube.Card {
	return append([]*cube.Card(nil), g.nodes...)
}

// Has reports whether card is a node.
func (g *Graph) Has(card *cube.Card) bool {
	_, ok := g.index[card.Name]
	return ok
}

// Degree returns the number of synergy edges of card, 0 if it is not a node.
func (g *Graph) Degree(card *cube.Card) int {
	i, ok := g.index[card.Name]
	if !ok {
		return 0
	}
	return len(g.adj[i])
}

// Neighbors returns the cards adjacent to card, in node order.
func (g *Graph) Neighbors(card *cube.Card) []*cube.Card {
	i, ok := g.index[card.Name]
	if !ok {
		return nil
	}
	return g.cards(g.adj[i])
}

// HasEdge reports whether a and b share a synergy edge.
func (g *Graph) HasEdge(a, b *cube.Card) bool {
	i, ok := g.index[a.Name]
	if !ok {
		return false
	}
	j, ok := g.index[b.Name]
	if !ok {
		return false
	}
	k := sort.SearchInts(g.adj[i], j)
	return k < len(g.adj[i]) && g.adj[i][k] == j
}

// Edges returns every edge once, ordered by the first endpoint's node order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for i, neighbors := range g.adj {
		for _, j := range neighbors {
			if i < j {
				edges = append(edges, Edge{A: g.nodes[i], B: g.nodes[j]})
			}
		}
	}
	return edges
}

func (g *Graph) cards(indices []int) []*cube.Card {
	cards := make([]*cube.Card, len(indices))
	for k, i := range indices {
		cards[k] = g.nodes[i]
	}
	return cards
}

// EdgesAmong counts the synergy edges among cards, building a throwaway graph.
func EdgesAmong(cards []*cube.Card) (int, error) {
	g, err := CreateGraph(cards, KeepIsolated())
	if err != nil {
		return 0, err
	}
	return g.EdgeCount(), nil
}
