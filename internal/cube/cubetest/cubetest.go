// Package cubetest builds cards for tests.
package cubetest

import (
	"fmt"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
)

// Option customizes a test card.
type Option func(*cube.Card)

// Card builds a nonland card. colors is a color string such as "WU" or "C".
func Card(name, colors string, opts ...Option) *cube.Card {
	c := &cube.Card{
		Name:      name,
		ColorID:   cube.MustParseColors(colors),
		Types:     []string{"instant"},
		PowerTier: cube.Untagged,
	}
	for _, sym := range c.ColorID.Symbols() {
		c.ManaCost = append(c.ManaCost, sym)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Land builds a colorless land that fixes for fixerColors (empty = no fixing).
func Land(name, fixerColors string, opts ...Option) *cube.Card {
	c := &cube.Card{
		Name:         name,
		ColorID:      cube.Colorless,
		Types:        []string{cube.TypeLand},
		FixerColorID: cube.MustParseColors(fixerColors),
		PowerTier:    cube.Untagged,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabler tags the card as an Enabler for each theme.
func Enabler(themes ...string) Option {
	return func(c *cube.Card) {
		for _, t := range themes {
			c.Tags = append(c.Tags, cube.Tag{Theme: t, Role: cube.RoleEnabler})
		}
	}
}

// Payoff tags the card as a Payoff for each theme.
func Payoff(themes ...string) Option {
	return func(c *cube.Card) {
		for _, t := range themes {
			c.Tags = append(c.Tags, cube.Tag{Theme: t, Role: cube.RolePayoff})
		}
	}
}

// Tier sets the power tier.
func Tier(tier int) Option {
	return func(c *cube.Card) {
		c.PowerTier = cube.PowerTier(tier)
	}
}

// Creature marks the card as a creature.
func Creature() Option {
	return func(c *cube.Card) {
		c.Types = []string{cube.TypeCreature}
	}
}

// Cost replaces the mana cost.
func Cost(symbols ...string) Option {
	return func(c *cube.Card) {
		c.ManaCost = symbols
	}
}

// Fixer sets fixer colors on a nonland card.
func Fixer(colors string) Option {
	return func(c *cube.Card) {
		c.FixerColorID = cube.MustParseColors(colors)
	}
}

// Series builds n cards named prefix-0 .. prefix-(n-1) with identical options.
func Series(prefix, colors string, n int, opts ...Option) []*cube.Card {
	cards := make([]*cube.Card, n)
	for i := range cards {
		cards[i] = Card(fmt.Sprintf("%s-%02d", prefix, i), colors, opts...)
	}
	return cards
}

// Named looks cards up by name, panicking on a typo.
func Named(index map[string]*cube.Card, names ...string) []*cube.Card {
	cards := make([]*cube.Card, len(names))
	for i, n := range names {
		c, ok := index[n]
		if !ok {
			panic(fmt.Sprintf("cubetest: unknown card %q", n))
		}
		cards[i] = c
	}
	return cards
}
