package cube

import (
	"fmt"
	"math/bits"
	"strings"
)

// Color constants for WUBRG
const (
	ColorWhite     = "W"
	ColorBlue      = "U"
	ColorBlack     = "B"
	ColorRed       = "R"
	ColorGreen     = "G"
	ColorColorless = "C"
)

// AllColors lists all five colors in WUBRG order.
var AllColors = []string{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen}

// ColorSet is a set of mana colors stored as a bitmask. The Colorless bit
// marks a card castable with any colors.
type ColorSet uint8

const (
	White ColorSet = 1 << iota
	Blue
	Black
	Red
	Green
	Colorless
)

// colorMask covers the five real colors, excluding the colorless marker.
const colorMask = White | Blue | Black | Red | Green

var colorBits = []ColorSet{White, Blue, Black, Red, Green}

// ParseColors parses a color string such as "WU", "ubr" or "C".
// An empty string yields the empty set.
func ParseColors(s string) (ColorSet, error) {
	var set ColorSet
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		c, ok := colorFromSymbol(string(r))
		if !ok {
			return 0, fmt.Errorf("unknown color symbol %q in %q", r, s)
		}
		set |= c
	}
	return set, nil
}

// MustParseColors is like ParseColors but panics on malformed input.
// Intended for constants and tests.
func MustParseColors(s string) ColorSet {
	set, err := ParseColors(s)
	if err != nil {
		panic(err)
	}
	return set
}

func colorFromSymbol(symbol string) (ColorSet, bool) {
	switch symbol {
	case ColorWhite:
		return White, true
	case ColorBlue:
		return Blue, true
	case ColorBlack:
		return Black, true
	case ColorRed:
		return Red, true
	case ColorGreen:
		return Green, true
	case ColorColorless:
		return Colorless, true
	}
	return 0, false
}

// IsColorSymbol reports whether a mana cost symbol is one of W, U, B, R, G.
func IsColorSymbol(symbol string) bool {
	c, ok := colorFromSymbol(symbol)
	return ok && c != Colorless
}

// Colors returns the set without the colorless marker.
func (c ColorSet) Colors() ColorSet {
	return c & colorMask
}

// IsColorless reports whether the colorless marker is set.
func (c ColorSet) IsColorless() bool {
	return c&Colorless != 0
}

// Count returns the number of real colors in the set.
func (c ColorSet) Count() int {
	return bits.OnesCount8(uint8(c & colorMask))
}

// Contains reports whether every color of other is in c.
func (c ColorSet) Contains(other ColorSet) bool {
	return c&other == other
}

// SubsetOf reports whether every real color of c is in other.
func (c ColorSet) SubsetOf(other ColorSet) bool {
	return c.Colors()&^other == 0
}

// Union returns the colors in either set.
func (c ColorSet) Union(other ColorSet) ColorSet {
	return c | other
}

// Intersect returns the colors in both sets.
func (c ColorSet) Intersect(other ColorSet) ColorSet {
	return c & other
}

// Without returns c with the colors of other removed.
func (c ColorSet) Without(other ColorSet) ColorSet {
	return c &^ other
}

// Symbols returns the real colors in WUBRG order.
func (c ColorSet) Symbols() []string {
	symbols := make([]string, 0, c.Count())
	for i, bit := range colorBits {
		if c&bit != 0 {
			symbols = append(symbols, AllColors[i])
		}
	}
	return symbols
}

// String renders the set in WUBRG order, e.g. "WU". A colorless-only set
// renders as "C".
func (c ColorSet) String() string {
	s := strings.Join(c.Symbols(), "")
	if s == "" && c.IsColorless() {
		return ColorColorless
	}
	return s
}

// ColorCombinations returns every combination of exactly size colors, in the
// lexicographic WUBRG order (WU, WB, WR, WG, UB, ...).
func ColorCombinations(size int) []ColorSet {
	if size <= 0 || size > len(colorBits) {
		return nil
	}

	var result []ColorSet
	var generate func(start, depth int, acc ColorSet)
	generate = func(start, depth int, acc ColorSet) {
		if depth == size {
			result = append(result, acc)
			return
		}
		for i := start; i < len(colorBits); i++ {
			generate(i+1, depth+1, acc|colorBits[i])
		}
	}

	generate(0, 0, 0)
	return result
}

// ColorPairs are the ten two-color combinations.
var ColorPairs = ColorCombinations(2)

// ColorTrios are the ten three-color combinations.
var ColorTrios = ColorCombinations(3)

// FormatColorName returns a human-readable name for a color combination.
func FormatColorName(colors ColorSet) string {
	colorNames := map[string]string{
		ColorWhite: "White",
		ColorBlue:  "Blue",
		ColorBlack: "Black",
		ColorRed:   "Red",
		ColorGreen: "Green",
	}

	symbols := colors.Symbols()
	if len(symbols) == 0 {
		return "Colorless"
	}
	if len(symbols) == 1 {
		return colorNames[symbols[0]]
	}

	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, colorNames[s])
	}
	return fmt.Sprintf("%s (%s)", strings.Join(names, "-"), colors)
}
