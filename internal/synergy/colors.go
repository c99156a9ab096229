package synergy

import "github.com/ramonehamilton/cube-drafter/internal/cube"

// Castable reports whether card can be cast with the given colors of mana:
// its color identity is a subset of colors, or it is colorless.
func Castable(card *cube.Card, colors cube.ColorSet) bool {
	return card.ColorID.IsColorless() || card.ColorID.SubsetOf(colors)
}

// OnColor returns the cards castable with colors, preserving order.
func OnColor(cards []*cube.Card, colors cube.ColorSet) []*cube.Card {
	result := make([]*cube.Card, 0, len(cards))
	for _, c := range cards {
		if Castable(c, colors) {
			result = append(result, c)
		}
	}
	return result
}
