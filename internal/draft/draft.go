// Package draft runs simulated cube drafts: packs are created from a
// shuffled cube and passed around the table while each seat's Picker chooses
// one card at a time.
package draft

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
)

var (
	// ErrInvalidPick is returned when a picker chooses a card not in the pack.
	ErrInvalidPick = errors.New("picked card is not in the pack")

	// ErrNotEnoughCards is returned when the cube cannot fill every pack.
	ErrNotEnoughCards = errors.New("not enough cards for draft configuration")
)

// Info describes the shape of a draft.
type Info struct {
	Seats        int `toml:"num_drafters"`
	Phases       int `toml:"num_phases"`
	CardsPerPack int `toml:"cards_per_pack"`
}

// DefaultInfo returns a six-seat, three-pack, fifteen-card draft.
func DefaultInfo() Info {
	return Info{Seats: 6, Phases: 3, CardsPerPack: 15}
}

// Validate checks that every dimension is positive.
func (i Info) Validate() error {
	if i.Seats <= 0 {
		return fmt.Errorf("seats must be positive, got %d", i.Seats)
	}
	if i.Phases <= 0 {
		return fmt.Errorf("phases must be positive, got %d", i.Phases)
	}
	if i.CardsPerPack <= 0 {
		return fmt.Errorf("cards per pack must be positive, got %d", i.CardsPerPack)
	}
	return nil
}

// PicksPerDrafter is the number of cards each seat ends up with.
func (i Info) PicksPerDrafter() int {
	return i.Phases * i.CardsPerPack
}

// CardsNeeded is the number of cube cards required to fill every pack.
func (i Info) CardsNeeded() int {
	return i.Seats * i.Phases * i.CardsPerPack
}

// Progress maps the number of picks already made to [0, 1]: 0 before the
// first pick, 1 at the last pick.
func (i Info) Progress(picksMade int) float64 {
	last := i.PicksPerDrafter() - 1
	if last <= 0 {
		return 0
	}
	p := float64(picksMade) / float64(last)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (i Info) String() string {
	return fmt.Sprintf("%d seats, %d packs of %d", i.Seats, i.Phases, i.CardsPerPack)
}

// Picker chooses one card from a pack. It must return an element of pack
// and must not modify pack or owned.
type Picker interface {
	Pick(pack, owned []*cube.Card, info Info) (*cube.Card, error)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(pack, owned []*cube.Card, info Info) (*cube.Card, error)

// Pick calls f.
func (f PickerFunc) Pick(pack, owned []*cube.Card, info Info) (*cube.Card, error) {
	return f(pack, owned, info)
}

// Drafter is one seat at the table. It owns the picked cards and the packs
// it was shown; the Picker only ever sees copies.
type Drafter struct {
	Seat        int
	picker      Picker
	owned       []*cube.Card
	packHistory [][]*cube.Card
}

// NewDrafter creates a drafter for seat using picker.
func NewDrafter(seat int, picker Picker) *Drafter {
	return &Drafter{Seat: seat, picker: picker}
}

// Pick shows pack to the picker, validates the choice and records it.
func (d *Drafter) Pick(pack []*cube.Card, info Info) (*cube.Card, error) {
	shown := append([]*cube.Card(nil), pack...)
	owned := append([]*cube.Card(nil), d.owned...)

	picked, err := d.picker.Pick(shown, owned, info)
	if err != nil {
		return nil, fmt.Errorf("seat %d pick: %w", d.Seat, err)
	}
	if picked == nil || !cube.Contains(pack, picked) {
		name := "<nil>"
		if picked != nil {
			name = picked.Name
		}
		return nil, fmt.Errorf("seat %d picked %q: %w", d.Seat, name, ErrInvalidPick)
	}

	d.packHistory = append(d.packHistory, append([]*cube.Card(nil), pack...))
	d.owned = append(d.owned, picked)
	return picked, nil
}

// Owned returns the cards picked so far, in pick order.
func (d *Drafter) Owned() []*cube.Card {
	return append([]*cube.Card(nil), d.owned...)
}

// PackHistory returns the pack shown at each pick, including the picked card.
func (d *Drafter) PackHistory() [][]*cube.Card {
	history := make([][]*cube.Card, len(d.packHistory))
	for i, pack := range d.packHistory {
		history[i] = append([]*cube.Card(nil), pack...)
	}
	return history
}
