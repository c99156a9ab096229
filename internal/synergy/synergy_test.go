package synergy

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	ct "github.com/ramonehamilton/cube-drafter/internal/cube/cubetest"
)

func loadFixture(t *testing.T) ([]*cube.Card, map[string]*cube.Card) {
	t.Helper()
	cards, err := cube.LoadCube(
		filepath.Join("..", "cube", "testdata", "common_neighbors.toml"),
		filepath.Join("..", "cube", "testdata", "fixer_data.toml"),
	)
	require.NoError(t, err)
	return cards, cube.ByName(cards)
}

func TestCreateGraph(t *testing.T) {
	cards, byName := loadFixture(t)

	g, err := CreateGraph(cards)
	require.NoError(t, err)

	// Lifegain: 3 enablers x 2 payoffs, Counters: 1 x 1. Tokens has no payoff.
	assert.Equal(t, 7, g.EdgeCount())
	assert.Equal(t, 6, g.Len(), "lands have no tags and are dropped")
	assert.False(t, g.Has(byName["Caves of Koilos"]))

	assert.True(t, g.HasEdge(byName["Abzan Battle Priest"], byName["Ajani's Pridemate"]))
	assert.True(t, g.HasEdge(byName["Ajani's Pridemate"], byName["Abzan Battle Priest"]))
	assert.True(t, g.HasEdge(byName["Swift Justice"], byName["Tuskguard Captain"]))
	assert.False(t, g.HasEdge(byName["Abzan Battle Priest"], byName["Lightning Helix"]), "two enablers")
	assert.Equal(t, 3, g.Degree(byName["Ajani's Pridemate"]))
	assert.Equal(t, 0, g.Degree(byName["Woodland Cemetery"]))
	assert.Len(t, g.Edges(), 7)

	full, err := CreateGraph(cards, KeepIsolated())
	require.NoError(t, err)
	assert.Equal(t, 8, full.Len())
	assert.Equal(t, 7, full.EdgeCount())
}

func TestCreateGraph_NoSelfLoops(t *testing.T) {
	both := ct.Card("Both", "W", ct.Enabler("Tokens"), ct.Payoff("Tokens"))
	other := ct.Card("Other", "W", ct.Payoff("Tokens"))

	g, err := CreateGraph([]*cube.Card{both, other})
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
	assert.False(t, g.HasEdge(both, both))
}

func TestCreateGraph_DuplicateCards(t *testing.T) {
	a := ct.Card("A", "W", ct.Enabler("Tokens"))
	b := ct.Card("B", "W", ct.Payoff("Tokens"))

	g, err := CreateGraph([]*cube.Card{a, b, a})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestCreateGraph_InvalidTagScheme(t *testing.T) {
	cards := []*cube.Card{
		ct.Card("A", "W", ct.Enabler("Tokens")),
		ct.Card("B", "W", ct.Payoff("Tokens")),
		{Name: "C", Tags: []cube.Tag{{Theme: "Tokens", Role: "Engine"}}},
	}

	_, err := CreateGraph(cards)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTagScheme))
}

func TestGraph_Subgraph(t *testing.T) {
	cards, byName := loadFixture(t)
	g, err := CreateGraph(cards)
	require.NoError(t, err)

	sub := g.Subgraph(ct.Named(byName, "Abzan Battle Priest", "Lightning Helix", "Woodland Cemetery"))
	assert.Equal(t, 2, sub.Len(), "cards outside the graph are ignored")
	assert.Equal(t, 0, sub.EdgeCount(), "isolated nodes are kept")

	sub = g.Subgraph(ct.Named(byName, "Abzan Battle Priest", "Ajani's Pridemate", "Ayli, Eternal Pilgrim"))
	assert.Equal(t, 2, sub.EdgeCount())
}

func TestCastable(t *testing.T) {
	wu := cube.MustParseColors("WU")

	tests := []struct {
		name string
		card *cube.Card
		want bool
	}{
		{name: "mono in pair", card: ct.Card("a", "W"), want: true},
		{name: "exact pair", card: ct.Card("b", "UW"), want: true},
		{name: "off color", card: ct.Card("c", "B"), want: false},
		{name: "partially off color", card: ct.Card("d", "WB"), want: false},
		{name: "colorless", card: ct.Card("e", "C"), want: true},
		{name: "land", card: ct.Land("f", "BG"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Castable(tt.card, wu))
		})
	}
}

func TestCastable_Monotonic(t *testing.T) {
	cards := []*cube.Card{ct.Card("a", "W"), ct.Card("b", "WB"), ct.Card("c", "C"), ct.Card("d", "RG")}
	for _, pair := range cube.ColorPairs {
		for _, trio := range cube.ColorTrios {
			if !pair.SubsetOf(trio) {
				continue
			}
			for _, c := range cards {
				if Castable(c, pair) {
					assert.True(t, Castable(c, trio), "%s castable in %s but not %s", c.Name, pair, trio)
				}
			}
		}
	}
}

func TestOnColorSubgraph(t *testing.T) {
	cards, _ := loadFixture(t)
	g, err := CreateGraph(cards)
	require.NoError(t, err)

	wb := g.Subgraph(OnColor(g.Nodes(), cube.MustParseColors("WB")))
	// Priest, Pridemate, Ayli, Swift Justice; Helix is red, Tuskguard green.
	assert.Equal(t, 4, wb.Len())
	assert.Equal(t, 4, wb.EdgeCount())
}

func TestAllCommonNeighbors(t *testing.T) {
	cards, byName := loadFixture(t)

	cn, err := AllCommonNeighbors(cards)
	require.NoError(t, err)

	priest := byName["Abzan Battle Priest"]
	pridemate := byName["Ajani's Pridemate"]
	helix := byName["Lightning Helix"]
	ayli := byName["Ayli, Eternal Pilgrim"]
	swift := byName["Swift Justice"]
	tuskguard := byName["Tuskguard Captain"]

	assert.Equal(t, []string{"Ajani's Pridemate", "Ayli, Eternal Pilgrim"}, cube.Names(cn.Get(priest, helix)))
	assert.Equal(t, []string{"Abzan Battle Priest", "Lightning Helix", "Swift Justice"}, cube.Names(cn.Get(pridemate, ayli)))
	assert.Equal(t, []string{"Swift Justice"}, cube.Names(cn.Get(tuskguard, pridemate)))
	assert.Empty(t, cn.Get(priest, pridemate), "adjacent cards without shared neighbors")
	assert.Empty(t, cn.Get(priest, byName["Caves of Koilos"]), "cards outside the graph")
	assert.Empty(t, cn.Get(priest, priest))

	for _, a := range cards {
		for _, b := range cards {
			assert.Equal(t, cn.Get(a, b), cn.Get(b, a), "%s / %s", a.Name, b.Name)
		}
	}
	assert.Empty(t, cn.Get(swift, tuskguard))
}

func TestSortedCentralities(t *testing.T) {
	hub := ct.Card("Hub", "W", ct.Payoff("Tokens"))
	leaves := []*cube.Card{
		ct.Card("Leaf C", "W", ct.Enabler("Tokens")),
		ct.Card("Leaf A", "W", ct.Enabler("Tokens")),
		ct.Card("Leaf B", "W", ct.Enabler("Tokens")),
	}
	g, err := CreateGraph(append([]*cube.Card{hub}, leaves...))
	require.NoError(t, err)

	sorted := SortedCentralities(g)
	require.Len(t, sorted, 4)
	assert.Equal(t, "Hub", sorted[0].Card.Name)
	assert.Equal(t, []string{"Leaf A", "Leaf B", "Leaf C"}, []string{
		sorted[1].Card.Name, sorted[2].Card.Name, sorted[3].Card.Name,
	})
	assert.Greater(t, sorted[0].Score, sorted[1].Score)
	assert.InDelta(t, sorted[1].Score, sorted[3].Score, 1e-9)

	empty, err := CreateGraph(nil)
	require.NoError(t, err)
	assert.Empty(t, SortedCentralities(empty))
}

func twoClusters(t *testing.T) (*Graph, []*cube.Card) {
	t.Helper()
	cards := []*cube.Card{
		ct.Card("Spirit Caller", "W", ct.Enabler("Spirits")),
		ct.Card("Spirit Lord", "W", ct.Payoff("Spirits")),
		ct.Card("Spirit Host", "W", ct.Enabler("Spirits")),
		ct.Card("Spirit King", "W", ct.Payoff("Spirits")),
		ct.Card("Graveyard Digger", "B", ct.Enabler("Graveyard")),
		ct.Card("Graveyard Ghoul", "B", ct.Payoff("Graveyard")),
		ct.Card("Graveyard Filler", "B", ct.Enabler("Graveyard")),
		ct.Card("Graveyard Lord", "B", ct.Payoff("Graveyard")),
	}
	g, err := CreateGraph(cards)
	require.NoError(t, err)
	return g, cards
}

func TestGreedyModularityCommunities(t *testing.T) {
	g, cards := twoClusters(t)

	communities := GreedyModularityCommunities(g)
	require.Len(t, communities, 2)
	assert.Len(t, communities[0], 4)
	assert.Len(t, communities[1], 4)

	seen := make(map[string]int)
	for _, community := range communities {
		for _, c := range community {
			seen[c.Name]++
		}
	}
	for _, c := range cards {
		assert.Equal(t, 1, seen[c.Name], "%s appears exactly once", c.Name)
	}

	for _, community := range communities {
		prefix := community[0].Name[:5]
		for _, c := range community {
			assert.Equal(t, prefix, c.Name[:5], "clusters are not mixed")
		}
	}

	assert.Greater(t, modularity(g, communities), 0.0)
}

func TestGreedyModularityCommunities_NoEdges(t *testing.T) {
	cards := []*cube.Card{ct.Card("A", "W"), ct.Card("B", "U"), ct.Card("C", "B")}
	g, err := CreateGraph(cards, KeepIsolated())
	require.NoError(t, err)

	communities := GreedyModularityCommunities(g)
	require.Len(t, communities, 3)
	for _, community := range communities {
		assert.Len(t, community, 1)
	}
	assert.Empty(t, TopCommunities(g))
}

func TestTopCommunities(t *testing.T) {
	g, _ := twoClusters(t)

	top := TopCommunities(g)
	require.Len(t, top, 2)
	for _, community := range top {
		assert.Equal(t, 4, community.InternalEdges)
		assert.InDelta(t, 1.0, community.Density(), 1e-9)
	}
}

// modularity scores a partition: internal edge fraction minus the fraction
// expected for a random graph with the same degrees.
func modularity(g *Graph, communities [][]*cube.Card) float64 {
	m := float64(g.EdgeCount())
	if m == 0 {
		return 0
	}
	q := 0.0
	for _, community := range communities {
		degreeSum := 0
		for _, c := range community {
			degreeSum += g.Degree(c)
		}
		ds := float64(degreeSum)
		q += float64(g.Subgraph(community).EdgeCount())/m - (ds/(2*m))*(ds/(2*m))
	}
	return q
}

func TestCreateGraph_LifegainTokensChain(t *testing.T) {
	priest := ct.Card("Priest", "W", ct.Enabler("Lifegain"))
	pridemate := ct.Card("Pridemate", "W", ct.Payoff("Lifegain"), ct.Enabler("Tokens"))
	helix := ct.Card("Helix", "WR", ct.Payoff("Tokens"))

	g, err := CreateGraph([]*cube.Card{priest, pridemate, helix})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasEdge(priest, pridemate))
	assert.True(t, g.HasEdge(pridemate, helix))
	assert.False(t, g.HasEdge(priest, helix))
}

func TestEdgesAmong(t *testing.T) {
	cards, _ := loadFixture(t)
	edges, err := EdgesAmong(cards)
	require.NoError(t, err)
	assert.Equal(t, 7, edges)
}
