// Package picker implements draft pickers. The main one rates every pack
// card for every color pair with a weighted set of components and takes the
// highest rated card.
package picker

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

// ErrEmptyPack is returned when asked to pick from an empty pack.
var ErrEmptyPack = errors.New("cannot pick from an empty pack")

const ratingDigits = 1000

func round3(v float64) float64 {
	return math.Round(v*ratingDigits) / ratingDigits
}

// RatedCard is one (card, color pair) candidate with its normalized
// component values and combined rating.
type RatedCard struct {
	Card       *cube.Card
	Combo      cube.ColorSet
	Components map[string]float64
	Rating     float64
}

func (r RatedCard) String() string {
	names := make([]string, 0, len(r.Components))
	for name := range r.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.3f", name, r.Components[name])
	}
	return fmt.Sprintf("%.3f %s [%s] %s", r.Rating, r.Card.Name, r.Combo, strings.Join(parts, " "))
}

// RatingsPicker rates candidates with a list of components. It is not safe
// for concurrent use; create one per drafter.
type RatingsPicker struct {
	components []Component
	rng        *rand.Rand
	logger     *logger.Logger
}

// NewRatingsPicker creates a picker. rng drives the tie-break shuffle.
func NewRatingsPicker(components []Component, rng *rand.Rand, log *logger.Logger) *RatingsPicker {
	return &RatingsPicker{
		components: components,
		rng:        rng,
		logger:     log,
	}
}

// Components returns the component names in evaluation order.
func (p *RatingsPicker) Components() []string {
	names := make([]string, len(p.components))
	for i, c := range p.components {
		names[i] = c.Name
	}
	return names
}

// Pick returns the best rated card, or the first card of the pack when no
// candidate could be rated.
func (p *RatingsPicker) Pick(pack, owned []*cube.Card, info draft.Info) (*cube.Card, error) {
	if len(pack) == 0 {
		return nil, ErrEmptyPack
	}
	ranked, err := p.Rate(pack, owned, info)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return pack[0], nil
	}
	return ranked[0].Card, nil
}

// Rate ranks every pack card for every color pair it can be played in,
// best first: cards castable in the pair and fixers for the pair.
func (p *RatingsPicker) Rate(pack, owned []*cube.Card, info draft.Info) ([]RatedCard, error) {
	var candidates []Candidate
	for _, combo := range cube.ColorPairs {
		onColor := synergy.OnColor(owned, combo)
		for _, card := range pack {
			if !synergy.Castable(card, combo) && !fixesCombo(card, combo) {
				continue
			}
			candidates = append(candidates, Candidate{
				Card:    card,
				Combo:   combo,
				Owned:   owned,
				OnColor: onColor,
				Info:    info,
			})
		}
	}

	if p.rng != nil {
		p.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}

	raw := make([][]float64, len(p.components))
	for k, component := range p.components {
		raw[k] = make([]float64, len(candidates))
		for i, c := range candidates {
			v, err := component.Rate(c)
			if err != nil {
				return nil, fmt.Errorf("rate %s with %s: %w", c.Card.Name, component.Name, err)
			}
			raw[k][i] = v
		}
	}

	progress := info.Progress(len(owned))
	weights := make([]float64, len(p.components))
	totalWeight := 0.0
	for k, component := range p.components {
		weights[k] = component.Weight(progress)
		totalWeight += weights[k]
	}

	rated := make([]RatedCard, len(candidates))
	for i, c := range candidates {
		rc := RatedCard{
			Card:       c.Card,
			Combo:      c.Combo,
			Components: make(map[string]float64, len(p.components)),
		}
		weighted := 0.0
		for k, component := range p.components {
			v := round3(component.Normalize(raw[k][i], raw[k]))
			rc.Components[component.Name] = v
			weighted += weights[k] * v
		}
		if totalWeight > 0 {
			rc.Rating = round3(weighted / totalWeight)
		}
		rated[i] = rc
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Rating > rated[j].Rating
	})

	if p.logger.IsDebugEnabled() {
		for i, rc := range rated {
			if i == 5 {
				break
			}
			p.logger.Debug("#%d %s", i+1, rc)
		}
	}
	return rated, nil
}

// RandomPicker picks uniformly at random.
type RandomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker creates a random picker driven by rng.
func NewRandomPicker(rng *rand.Rand) *RandomPicker {
	return &RandomPicker{rng: rng}
}

// Pick returns a random card from pack.
func (p *RandomPicker) Pick(pack, _ []*cube.Card, _ draft.Info) (*cube.Card, error) {
	if len(pack) == 0 {
		return nil, ErrEmptyPack
	}
	return pack[p.rng.Intn(len(pack))], nil
}
