// Package cube holds the card model shared by the drafting and deckbuilding
// engines, plus loading of tagged cube lists.
package cube

import (
	"strconv"
	"strings"
)

// Card types the engines care about.
const (
	TypeLand     = "land"
	TypeCreature = "creature"
)

// Card is one cube card. Cards are built once by the loader and shared by
// pointer; nothing mutates a Card after construction. Two cards are the same
// card iff their names match.
type Card struct {
	Name string

	// ColorID is the card's color identity as assigned by the cube owner.
	ColorID ColorSet

	// Types are lower-case card types, e.g. "creature", "land".
	Types []string

	// ManaCost is the ordered cost symbols: digits are generic cost,
	// letters are colored pips. {2}{W}{W} is ["2", "W", "W"].
	ManaCost []string

	// Tags are the (theme, role) synergy tags.
	Tags []Tag

	// PowerTier is 1 (strongest) to 4, or Untagged. The zero value is not
	// a defined tier; constructors must set Untagged explicitly.
	PowerTier PowerTier

	// FixerColorID is the set of colors a mana-fixing card produces.
	// Zero means the card is not a fixer.
	FixerColorID ColorSet

	// Set is the printing's set code, used by exports only.
	Set string
}

// Equal reports whether two cards are the same card.
func (c *Card) Equal(other *Card) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name
}

// String returns the card name.
func (c *Card) String() string {
	return c.Name
}

// HasType reports whether the card has the given type (case-insensitive).
func (c *Card) HasType(cardType string) bool {
	for _, t := range c.Types {
		if strings.EqualFold(t, cardType) {
			return true
		}
	}
	return false
}

// IsLand reports whether the card is a land.
func (c *Card) IsLand() bool {
	return c.HasType(TypeLand)
}

// IsCreature reports whether the card is a creature.
func (c *Card) IsCreature() bool {
	return c.HasType(TypeCreature)
}

// IsFixer reports whether the card has fixer color data.
func (c *Card) IsFixer() bool {
	return c.FixerColorID.Count() > 0
}

// IsTagged reports whether the card carries any synergy tag.
func (c *Card) IsTagged() bool {
	return len(c.Tags) > 0
}

// CMC is generic cost plus the number of colored symbols.
func (c *Card) CMC() int {
	cmc := 0
	for _, symbol := range c.ManaCost {
		if n, err := strconv.Atoi(symbol); err == nil {
			cmc += n
			continue
		}
		cmc++
	}
	return cmc
}

// PipCount returns how many times a color symbol appears in the mana cost.
func (c *Card) PipCount(color string) int {
	count := 0
	for _, symbol := range c.ManaCost {
		if strings.EqualFold(symbol, color) {
			count++
		}
	}
	return count
}

// CostColors returns the set of colored symbols present in the mana cost.
func (c *Card) CostColors() ColorSet {
	var set ColorSet
	for _, symbol := range c.ManaCost {
		if cs, ok := colorFromSymbol(strings.ToUpper(symbol)); ok && cs != Colorless {
			set |= cs
		}
	}
	return set
}

// Names returns the names of cards, preserving order.
func Names(cards []*Card) []string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return names
}

// ByName indexes cards by name. Later duplicates win.
func ByName(cards []*Card) map[string]*Card {
	index := make(map[string]*Card, len(cards))
	for _, c := range cards {
		index[c.Name] = c
	}
	return index
}

// Contains reports whether cards holds a card with the same name as card.
func Contains(cards []*Card, card *Card) bool {
	for _, c := range cards {
		if c.Equal(card) {
			return true
		}
	}
	return false
}

// Without returns cards minus every card whose name is in remove.
func Without(cards []*Card, remove []*Card) []*Card {
	excluded := make(map[string]bool, len(remove))
	for _, c := range remove {
		excluded[c.Name] = true
	}
	result := make([]*Card, 0, len(cards))
	for _, c := range cards {
		if !excluded[c.Name] {
			result = append(result, c)
		}
	}
	return result
}

// Nonlands returns the cards that are not lands.
func Nonlands(cards []*Card) []*Card {
	result := make([]*Card, 0, len(cards))
	for _, c := range cards {
		if !c.IsLand() {
			result = append(result, c)
		}
	}
	return result
}

// CountNonlands returns the number of cards that are not lands.
func CountNonlands(cards []*Card) int {
	n := 0
	for _, c := range cards {
		if !c.IsLand() {
			n++
		}
	}
	return n
}

// CostColorsOf returns every colored mana symbol present across the costs of cards.
func CostColorsOf(cards []*Card) ColorSet {
	var set ColorSet
	for _, c := range cards {
		set |= c.CostColors()
	}
	return set
}
