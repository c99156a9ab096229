package deckbuild

import (
	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

// Attempt is one main-pair / splash assignment tried by the builder.
type Attempt struct {
	Main   cube.ColorSet
	Splash cube.ColorSet
}

// Colors returns main and splash colors together.
func (a Attempt) Colors() cube.ColorSet {
	return a.Main.Union(a.Splash)
}

func (a Attempt) String() string {
	if a.Splash == 0 {
		return a.Main.String()
	}
	return a.Main.String() + " splash " + a.Splash.String()
}

// Attempts enumerates every color assignment: each two-color combination on
// its own, then each three-color combination with every choice of two main
// colors and the third as splash.
func Attempts() []Attempt {
	var attempts []Attempt
	for _, combo := range append(append([]cube.ColorSet(nil), cube.ColorPairs...), cube.ColorTrios...) {
		colors := combo.Symbols()
		for i := 0; i < len(colors)-1; i++ {
			for j := i + 1; j < len(colors); j++ {
				main := cube.MustParseColors(colors[i] + colors[j])
				attempts = append(attempts, Attempt{Main: main, Splash: combo.Without(main)})
			}
		}
	}
	return attempts
}

// fixerFor reports whether card produces at least two of colors. A fixer
// does not need to match the deck's colors exactly to help it.
func fixerFor(card *cube.Card, colors cube.ColorSet) bool {
	return card.FixerColorID.Intersect(colors).Count() > 1
}

// splashed reports whether card's cost has any splash color symbol.
func splashed(card *cube.Card, splash cube.ColorSet) bool {
	return card.CostColors().Intersect(splash) != 0
}

// splashable reports whether card is cheap enough on splash pips to play
// off a splash. Cheap creatures are never splashed.
func splashable(card *cube.Card, splash cube.ColorSet) bool {
	if card.IsCreature() && card.CMC() < 3 {
		return false
	}
	for _, s := range splash.Symbols() {
		if card.PipCount(s) > 1 {
			return false
		}
	}
	return true
}

// relevantCards filters pool to the cards worth considering for an attempt:
// on-color nonlands, splashable nonlands, and lands that fix for the colors
// or carry a synergy tag.
func relevantCards(pool []*cube.Card, a Attempt) []*cube.Card {
	colors := a.Colors()
	var relevant []*cube.Card
	for _, c := range pool {
		switch {
		case c.IsLand():
			if fixerFor(c, colors) || c.IsTagged() {
				relevant = append(relevant, c)
			}
		case synergy.Castable(c, a.Main):
			relevant = append(relevant, c)
		case synergy.Castable(c, colors) && splashable(c, a.Splash):
			relevant = append(relevant, c)
		}
	}
	return relevant
}
