package deckexport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/synergy"
)

// ParseDecklist reads the main deck of a "1 Card Name" decklist. Lines that
// do not start with a count, such as headers, are skipped. The deck ends at
// the first blank line after a card. A trailing " (SET)" is dropped.
func ParseDecklist(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(names) > 0 {
				break
			}
			continue
		}

		countField, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		count, err := strconv.Atoi(countField)
		if err != nil || count <= 0 {
			continue
		}
		if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
			name = name[:i]
		}
		for ; count > 0; count-- {
			names = append(names, strings.TrimSpace(name))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read decklist: %w", err)
	}
	return names, nil
}

// CountEdges returns the number of synergy edges among the named cards.
func CountEdges(names []string, cards []*cube.Card) (int, error) {
	byName := cube.ByName(cards)
	deck := make([]*cube.Card, 0, len(names))
	for _, name := range names {
		card, ok := byName[name]
		if !ok {
			return 0, fmt.Errorf("unknown card %q", name)
		}
		deck = append(deck, card)
	}

	edges, err := synergy.EdgesAmong(deck)
	if err != nil {
		return 0, fmt.Errorf("build deck graph: %w", err)
	}
	return edges, nil
}
