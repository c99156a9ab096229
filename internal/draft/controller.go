package draft

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
)

// Packs holds every pack of a draft, indexed by phase and starting seat.
type Packs struct {
	contents [][][]*cube.Card
}

// CreatePacks shuffles a copy of cards with rng and slices it into packs.
func CreatePacks(info Info, cards []*cube.Card, rng *rand.Rand) (*Packs, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if info.CardsNeeded() > len(cards) {
		return nil, fmt.Errorf("%w: need %d, have %d (%s)", ErrNotEnoughCards, info.CardsNeeded(), len(cards), info)
	}

	shuffled := append([]*cube.Card(nil), cards...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	contents := make([][][]*cube.Card, info.Phases)
	for phase := range contents {
		contents[phase] = make([][]*cube.Card, info.Seats)
		for seat := range contents[phase] {
			start := (phase*info.Seats + seat) * info.CardsPerPack
			contents[phase][seat] = append([]*cube.Card(nil), shuffled[start:start+info.CardsPerPack]...)
		}
	}
	return &Packs{contents: contents}, nil
}

// Get returns the current contents of the pack opened by seat in phase.
func (p *Packs) Get(phase, seat int) []*cube.Card {
	return p.contents[phase][seat]
}

func (p *Packs) remove(phase, seat int, card *cube.Card) {
	p.contents[phase][seat] = cube.Without(p.contents[phase][seat], []*cube.Card{card})
}

// PackIndex returns the starting seat of the pack that drafter sees at pick
// in phase. Packs pass left in even phases and right in odd ones.
func PackIndex(info Info, phase, pick, drafter int) int {
	direction := 1
	if phase%2 == 1 {
		direction = -1
	}
	idx := (pick*direction + drafter) % info.Seats
	if idx < 0 {
		idx += info.Seats
	}
	return idx
}

// Controller runs a draft to completion.
type Controller struct {
	info     Info
	drafters []*Drafter
	packs    *Packs
	logger   *logger.Logger
}

// NewController creates a controller. There must be exactly one drafter per
// seat.
func NewController(info Info, drafters []*Drafter, packs *Packs, log *logger.Logger) (*Controller, error) {
	if len(drafters) != info.Seats {
		return nil, fmt.Errorf("exactly %d drafters required, got %d", info.Seats, len(drafters))
	}
	return &Controller{
		info:     info,
		drafters: drafters,
		packs:    packs,
		logger:   log,
	}, nil
}

// Create builds packs from cards and returns a controller ready to run.
func Create(info Info, drafters []*Drafter, cards []*cube.Card, rng *rand.Rand, log *logger.Logger) (*Controller, error) {
	packs, err := CreatePacks(info, cards, rng)
	if err != nil {
		return nil, err
	}
	return NewController(info, drafters, packs, log)
}

// Drafters returns the seats in order.
func (c *Controller) Drafters() []*Drafter {
	return c.drafters
}

// Info returns the draft shape.
func (c *Controller) Info() Info {
	return c.info
}

// Run performs every pick of every phase. It stops early if ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	for phase := 0; phase < c.info.Phases; phase++ {
		c.logger.Debug("Phase %d", phase)
		for pick := 0; pick < c.info.CardsPerPack; pick++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for seat, d := range c.drafters {
				idx := PackIndex(c.info, phase, pick, seat)
				pack := c.packs.Get(phase, idx)
				picked, err := d.Pick(pack, c.info)
				if err != nil {
					return fmt.Errorf("phase %d pick %d: %w", phase, pick, err)
				}
				c.logger.Debug("Seat %d took %s from pack %d (phase %d, pick %d)", seat, picked.Name, idx, phase, pick)
				c.packs.remove(phase, idx, picked)
			}
		}
	}
	return nil
}
