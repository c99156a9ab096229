package picker

import (
	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

// Component names.
const (
	CardsOwnedPowerName   = "cards_owned_power"
	PowerDeltaName        = "power_delta"
	CardsOwnedSynergyName = "cards_owned_syn_edges"
	SynergyDeltaName      = "syn_edges_delta"
	CommonNeighborsName   = "common_neighbors_weighted"
	LandFixingName        = "land_fixer"
	CubeCentralityName    = "cube_centrality"
)

// Candidate is a pack card considered for one color pair.
type Candidate struct {
	Card  *cube.Card
	Combo cube.ColorSet
	Owned []*cube.Card
	// OnColor holds the owned cards castable in Combo.
	OnColor []*cube.Card
	Info    draft.Info
}

// RateFunc computes a component's raw value for a candidate.
type RateFunc func(c Candidate) (float64, error)

// NormalizeFunc maps a raw value to [0, 1], given every raw value of the
// component across the candidate list.
type NormalizeFunc func(value float64, all []float64) float64

// WeightFunc returns a component's weight at a point of the draft, where
// progress runs from 0 (first pick) to 1 (last pick).
type WeightFunc func(progress float64) float64

// Component is one named rating dimension.
type Component struct {
	Name      string
	Rate      RateFunc
	Normalize NormalizeFunc
	Weight    WeightFunc
}

// WithWeight returns a copy of c using w.
func (c Component) WithWeight(w WeightFunc) Component {
	c.Weight = w
	return c
}

// RelativeToMax divides by the largest value; all-zero lists map to 0.
func RelativeToMax(value float64, all []float64) float64 {
	maxValue := 0.0
	for _, v := range all {
		if v > maxValue {
			maxValue = v
		}
	}
	if maxValue <= 0 {
		return 0
	}
	return value / maxValue
}

// Identity passes already bounded values through.
func Identity(value float64, _ []float64) float64 {
	return value
}

// Constant weighs a component the same for the whole draft.
func Constant(w float64) WeightFunc {
	return func(float64) float64 { return w }
}

// Linear interpolates from start at the first pick to end at the last.
func Linear(start, end float64) WeightFunc {
	return func(progress float64) float64 {
		return start + (end-start)*progress
	}
}

// CardsOwnedPower sums the power of owned on-color cards.
func CardsOwnedPower() Component {
	return Component{
		Name: CardsOwnedPowerName,
		Rate: func(c Candidate) (float64, error) {
			total := 0.0
			for _, owned := range c.OnColor {
				p, err := cube.PowerRating(owned)
				if err != nil {
					return 0, err
				}
				total += p
			}
			return total, nil
		},
		Normalize: RelativeToMax,
		Weight:    Constant(1),
	}
}

// PowerDelta is the candidate's own power.
func PowerDelta() Component {
	return Component{
		Name: PowerDeltaName,
		Rate: func(c Candidate) (float64, error) {
			return cube.PowerRating(c.Card)
		},
		Normalize: Identity,
		Weight:    Constant(1),
	}
}

// CardsOwnedSynergy counts synergy edges among owned on-color cards.
func CardsOwnedSynergy() Component {
	return Component{
		Name: CardsOwnedSynergyName,
		Rate: func(c Candidate) (float64, error) {
			g, err := synergy.CreateGraph(c.OnColor)
			if err != nil {
				return 0, err
			}
			return float64(g.EdgeCount()), nil
		},
		Normalize: RelativeToMax,
		Weight:    Constant(1),
	}
}

// SynergyDelta counts the edges the candidate would add to the owned
// on-color cards.
func SynergyDelta() Component {
	return Component{
		Name: SynergyDeltaName,
		Rate: func(c Candidate) (float64, error) {
			cards := append(append([]*cube.Card(nil), c.OnColor...), c.Card)
			g, err := synergy.CreateGraph(cards)
			if err != nil {
				return 0, err
			}
			return float64(g.Degree(c.Card)), nil
		},
		Normalize: RelativeToMax,
		Weight:    Constant(1),
	}
}

// CommonNeighbors counts, over every owned on-color card, the cube cards
// that would synergize with both it and the candidate and are still
// obtainable in the color pair.
func CommonNeighbors(index *synergy.CommonNeighbors) Component {
	return Component{
		Name: CommonNeighborsName,
		Rate: func(c Candidate) (float64, error) {
			count := 0
			for _, owned := range c.OnColor {
				for _, n := range index.Get(c.Card, owned) {
					if synergy.Castable(n, c.Combo) && !cube.Contains(c.Owned, n) {
						count++
					}
				}
			}
			return float64(count), nil
		},
		Normalize: RelativeToMax,
		Weight:    Constant(1),
	}
}

const (
	landFixingFloor      = 0.3
	landFixingBaseOffset = 3
)

// LandFixing values a land that fixes for exactly the color pair. The value
// ramps up with the share of on-color nonlands already owned, starting at a
// floor, and drops as more such fixers are owned. It is weighted 3.
func LandFixing() Component {
	return Component{
		Name:      LandFixingName,
		Rate:      rateLandFixing,
		Normalize: Identity,
		Weight:    Constant(3),
	}
}

func rateLandFixing(c Candidate) (float64, error) {
	picks := len(c.Owned)
	if picks == 0 {
		return 0, nil
	}
	if !c.Card.IsLand() || !fixesCombo(c.Card, c.Combo) {
		return 0, nil
	}

	nonlands := 0
	for _, owned := range c.OnColor {
		if !owned.IsLand() {
			nonlands++
		}
	}
	fixers := 0
	for _, owned := range c.Owned {
		if owned.IsLand() && fixesCombo(owned, c.Combo) {
			fixers++
		}
	}

	offset := landFixingBaseOffset + fixers
	surplus := nonlands - offset
	if surplus < 0 {
		surplus = 0
	}
	return landFixingFloor + (1-landFixingFloor)*float64(surplus)/float64(picks), nil
}

// fixesCombo reports whether card produces exactly the colors of combo.
func fixesCombo(card *cube.Card, combo cube.ColorSet) bool {
	return card.FixerColorID.Count() > 0 && card.FixerColorID.Colors() == combo
}

// CubeCentrality rates a candidate by its precomputed centrality in the
// whole cube's synergy graph. Cards absent from scores rate 0.
func CubeCentrality(scores map[string]float64) Component {
	return Component{
		Name: CubeCentralityName,
		Rate: func(c Candidate) (float64, error) {
			return scores[c.Card.Name], nil
		},
		Normalize: RelativeToMax,
		Weight:    Constant(1),
	}
}
