package cube

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Role is a card's part in a synergy theme.
type Role string

// Supported roles. A theme links every Enabler to every Payoff.
const (
	RoleEnabler Role = "Enabler"
	RolePayoff  Role = "Payoff"
)

// Tag is a two-part synergy tag, written "Theme - Role" in cube data.
type Tag struct {
	Theme string
	Role  Role
}

// String renders the tag in cube-data form.
func (t Tag) String() string {
	return fmt.Sprintf("%s - %s", t.Theme, t.Role)
}

// PowerTier is a cube owner's power ranking: 1 is strongest, 4 weakest.
type PowerTier int

// Untagged marks a card without a "Tier N" tag. It sits outside the tier
// range so that an explicit "Tier 0" stays an undefined tier.
const Untagged PowerTier = -1

// ErrUndefinedPowerTier is returned when a card's tier has no power value.
var ErrUndefinedPowerTier = errors.New("undefined power tier")

// powerByTier values are hand-assigned defaults.
var powerByTier = map[PowerTier]float64{
	1:        1,
	2:        0.7,
	3:        0.4,
	4:        0.1,
	Untagged: 0,
}

// PowerRating returns the numerical power value for a card's tier.
func PowerRating(card *Card) (float64, error) {
	value, ok := powerByTier[card.PowerTier]
	if !ok {
		return 0, fmt.Errorf("%w %d for card %q", ErrUndefinedPowerTier, card.PowerTier, card.Name)
	}
	return value, nil
}

const tierPrefix = "Tier"

// ParseRawTags splits raw cube tags into synergy tags and a power tier.
// Recognised shapes are "Tier N" and "Theme - Role"; anything else is ignored.
func ParseRawTags(raw []string) ([]Tag, PowerTier, error) {
	var tags []Tag
	tier := Untagged

	for _, rawTag := range raw {
		rawTag = strings.TrimSpace(rawTag)
		if strings.HasPrefix(rawTag, tierPrefix) {
			fields := strings.Fields(rawTag)
			if len(fields) != 2 {
				return nil, Untagged, fmt.Errorf("malformed power tag %q", rawTag)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, Untagged, fmt.Errorf("malformed power tag %q: %w", rawTag, err)
			}
			if n < 0 {
				return nil, Untagged, fmt.Errorf("malformed power tag %q: negative tier", rawTag)
			}
			tier = PowerTier(n)
			continue
		}

		parts := strings.Split(rawTag, "-")
		if len(parts) != 2 {
			continue
		}
		theme, role := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if theme == "" || role == "" {
			continue
		}
		tags = append(tags, Tag{Theme: theme, Role: Role(role)})
	}

	return tags, tier, nil
}
