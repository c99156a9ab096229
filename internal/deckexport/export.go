// Package deckexport writes built decks as text decklists.
package deckexport

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
)

// Format is a decklist text format.
type Format string

const (
	// FormatCockatrice is "1 Name" lines, a blank line, then the sideboard.
	FormatCockatrice Format = "cockatrice"
	// FormatArena uses Deck and Sideboard headers, set codes and basic lands.
	FormatArena Format = "arena"
)

// DefaultDeckSize is the deck size basic lands fill up to.
const DefaultDeckSize = 40

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCockatrice, FormatArena:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Cockatrice renders deck then sideboard, separated by a blank line.
func Cockatrice(deck, sideboard []*cube.Card) string {
	lines := make([]string, 0, len(deck)+len(sideboard)+1)
	for _, c := range deck {
		lines = append(lines, "1 "+c.Name)
	}
	lines = append(lines, "")
	for _, c := range sideboard {
		lines = append(lines, "1 "+c.Name)
	}
	return strings.Join(lines, "\n")
}

// Arena renders deck, basic lands and sideboard in Arena's import format.
func Arena(deck, sideboard []*cube.Card, basics []LandCount) string {
	var sb strings.Builder

	sb.WriteString("Deck\n")
	writeCounts(&sb, deck)
	for _, land := range basics {
		sb.WriteString(fmt.Sprintf("%d %s\n", land.Count, land.Name))
	}

	if len(sideboard) > 0 {
		sb.WriteString("\nSideboard\n")
		writeCounts(&sb, sideboard)
	}

	return sb.String()
}

// writeCounts writes one line per distinct card in first-seen order.
func writeCounts(sb *strings.Builder, cards []*cube.Card) {
	counts := make(map[string]int, len(cards))
	var order []*cube.Card
	for _, c := range cards {
		if counts[c.Name] == 0 {
			order = append(order, c)
		}
		counts[c.Name]++
	}
	for _, c := range order {
		line := fmt.Sprintf("%d %s", counts[c.Name], c.Name)
		if c.Set != "" {
			line += fmt.Sprintf(" (%s)", strings.ToUpper(c.Set))
		}
		sb.WriteString(line + "\n")
	}
}

// Export renders build in format. pool supplies the sideboard.
func Export(format Format, build *deckbuild.Build, pool []*cube.Card) (string, error) {
	if build == nil {
		return "", fmt.Errorf("no deck to export")
	}
	sideboard := build.Sideboard(pool)

	switch format {
	case FormatCockatrice:
		return Cockatrice(build.Cards, sideboard), nil
	case FormatArena:
		return Arena(build.Cards, sideboard, BasicLands(build, DefaultDeckSize)), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile exports build to filename.
func WriteFile(filename string, format Format, build *deckbuild.Build, pool []*cube.Card) error {
	text, err := Export(format, build, pool)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write deck file: %w", err)
	}
	return nil
}

// LandCount is a number of copies of one basic land.
type LandCount struct {
	Color string
	Name  string
	Count int
}

// BasicLandName returns the basic land for a color symbol.
func BasicLandName(color string) string {
	switch color {
	case cube.ColorWhite:
		return "Plains"
	case cube.ColorBlue:
		return "Island"
	case cube.ColorBlack:
		return "Swamp"
	case cube.ColorRed:
		return "Mountain"
	case cube.ColorGreen:
		return "Forest"
	default:
		return "Wastes"
	}
}

// BasicLands fills build up to deckSize with basics split by the deck's
// colored pips. Remainders go to the colors with the largest fractional
// share. A deck with no pips splits evenly across its colors.
func BasicLands(build *deckbuild.Build, deckSize int) []LandCount {
	total := deckSize - len(build.Cards)
	colors := build.Colors().Symbols()
	if total <= 0 || len(colors) == 0 {
		return nil
	}

	pips := make([]int, len(colors))
	sum := 0
	for i, color := range colors {
		for _, c := range cube.Nonlands(build.Cards) {
			pips[i] += c.PipCount(color)
		}
		sum += pips[i]
	}
	if sum == 0 {
		for i := range pips {
			pips[i] = 1
		}
		sum = len(pips)
	}

	type share struct {
		index     int
		remainder int
	}
	counts := make([]int, len(colors))
	shares := make([]share, len(colors))
	assigned := 0
	for i := range colors {
		counts[i] = total * pips[i] / sum
		assigned += counts[i]
		shares[i] = share{index: i, remainder: total * pips[i] % sum}
	}
	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].remainder > shares[b].remainder
	})
	for i := 0; assigned < total; i++ {
		counts[shares[i%len(shares)].index]++
		assigned++
	}

	var lands []LandCount
	for i, color := range colors {
		if counts[i] > 0 {
			lands = append(lands, LandCount{Color: color, Name: BasicLandName(color), Count: counts[i]})
		}
	}
	return lands
}

// Summary returns a human-readable description of build.
func Summary(build *deckbuild.Build, pool []*cube.Card) string {
	if build == nil {
		return "No deck built"
	}

	var sb strings.Builder
	title := cube.FormatColorName(build.Main)
	if build.Splash != 0 {
		title += " splash " + cube.FormatColorName(build.Splash)
	}
	sb.WriteString(fmt.Sprintf("=== %s ===\n", title))
	sb.WriteString(fmt.Sprintf("Synergy edges: %d\n", build.Edges))
	sb.WriteString(fmt.Sprintf("Main Deck: %d nonlands + %d fixing lands\n", build.Nonlands(), len(build.FixerLands)))
	sb.WriteString(fmt.Sprintf("Core: %d, Filler: %d\n", len(build.Core), len(build.Filler)))
	sb.WriteString(fmt.Sprintf("Sideboard: %d cards\n", len(build.Sideboard(pool))))
	sb.WriteString(fmt.Sprintf("Color assignments: %d tried, %d failed\n", build.Attempts, build.Failures))

	return sb.String()
}
