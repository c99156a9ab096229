package cube

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// rawCard is one entry of a cube TOML file, keyed by card name:
//
//	["Ajani's Pridemate"]
//	color_identity = "W"
//	types = ["creature"]
//	mana_cost = ["1", "W"]
//	tags = ["Lifegain - Payoff", "Tier 2"]
type rawCard struct {
	ColorIdentity string   `toml:"color_identity"`
	Types         []string `toml:"types"`
	ManaCost      []string `toml:"mana_cost"`
	Tags          []string `toml:"tags"`
	Set           string   `toml:"set"`
}

// LoadCube reads a cube list and, if fixerPath is non-empty, its fixer data.
// Cards are returned sorted by name.
func LoadCube(cardPath, fixerPath string) ([]*Card, error) {
	cardData, err := os.ReadFile(cardPath)
	if err != nil {
		return nil, fmt.Errorf("read cube file: %w", err)
	}

	var fixerData []byte
	if fixerPath != "" {
		fixerData, err = os.ReadFile(fixerPath)
		if err != nil {
			return nil, fmt.Errorf("read fixer data file: %w", err)
		}
	}

	return ParseCube(cardData, fixerData)
}

// ParseCube parses cube TOML and optional fixer TOML (card name = color identity).
func ParseCube(cardData, fixerData []byte) ([]*Card, error) {
	var raw map[string]rawCard
	if err := toml.Unmarshal(cardData, &raw); err != nil {
		return nil, fmt.Errorf("parse cube data: %w", err)
	}

	fixers := map[string]string{}
	if len(fixerData) > 0 {
		if err := toml.Unmarshal(fixerData, &fixers); err != nil {
			return nil, fmt.Errorf("parse fixer data: %w", err)
		}
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	cards := make([]*Card, 0, len(names))
	for _, name := range names {
		card, err := fromRaw(name, raw[name])
		if err != nil {
			return nil, err
		}
		if fixer, ok := fixers[name]; ok {
			card.FixerColorID, err = ParseColors(fixer)
			if err != nil {
				return nil, fmt.Errorf("card %q fixer colors: %w", name, err)
			}
		}
		cards = append(cards, card)
	}

	return cards, nil
}

func fromRaw(name string, raw rawCard) (*Card, error) {
	colorID, err := ParseColors(raw.ColorIdentity)
	if err != nil {
		return nil, fmt.Errorf("card %q color identity: %w", name, err)
	}

	tags, tier, err := ParseRawTags(raw.Tags)
	if err != nil {
		return nil, fmt.Errorf("card %q tags: %w", name, err)
	}

	types := make([]string, len(raw.Types))
	for i, t := range raw.Types {
		types[i] = strings.ToLower(t)
	}

	return &Card{
		Name:      name,
		ColorID:   colorID,
		Types:     types,
		ManaCost:  append([]string(nil), raw.ManaCost...),
		Tags:      tags,
		PowerTier: tier,
		Set:       raw.Set,
	}, nil
}
