package cube

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ColorSet
		str     string
		wantErr bool
	}{
		{name: "two-color", input: "WU", want: White | Blue, str: "WU"},
		{name: "out of order", input: "GW", want: White | Green, str: "WG"},
		{name: "lower case", input: "ubr", want: Blue | Black | Red, str: "UBR"},
		{name: "colorless", input: "C", want: Colorless, str: "C"},
		{name: "empty", input: "", want: 0, str: ""},
		{name: "unknown symbol", input: "WX", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColors(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestColorSet_SubsetOf(t *testing.T) {
	wu := MustParseColors("WU")

	assert.True(t, MustParseColors("W").SubsetOf(wu))
	assert.True(t, MustParseColors("UW").SubsetOf(wu))
	assert.False(t, MustParseColors("WB").SubsetOf(wu))
	assert.True(t, ColorSet(0).SubsetOf(wu), "empty set is a subset of everything")
	assert.True(t, Colorless.SubsetOf(wu), "colorless marker is ignored by subset checks")
}

func TestColorCombinations(t *testing.T) {
	assert.Len(t, ColorPairs, 10)
	assert.Len(t, ColorTrios, 10)

	pairs := make([]string, len(ColorPairs))
	for i, p := range ColorPairs {
		pairs[i] = p.String()
	}
	assert.Equal(t, []string{"WU", "WB", "WR", "WG", "UB", "UR", "UG", "BR", "BG", "RG"}, pairs)

	assert.Nil(t, ColorCombinations(0))
	assert.Nil(t, ColorCombinations(6))
	assert.Len(t, ColorCombinations(5), 1)
}

func TestFormatColorName(t *testing.T) {
	assert.Equal(t, "White", FormatColorName(White))
	assert.Equal(t, "Blue-Red (UR)", FormatColorName(MustParseColors("RU")))
	assert.Equal(t, "Colorless", FormatColorName(0))
}

func TestCard_CMC(t *testing.T) {
	tests := []struct {
		name string
		cost []string
		want int
	}{
		{name: "generic and colored", cost: []string{"2", "W", "W"}, want: 4},
		{name: "colored only", cost: []string{"R", "W"}, want: 2},
		{name: "double digit generic", cost: []string{"10"}, want: 10},
		{name: "no cost", cost: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Card{Name: tt.name, ManaCost: tt.cost}
			assert.Equal(t, tt.want, c.CMC())
		})
	}
}

func TestCard_Predicates(t *testing.T) {
	land := &Card{Name: "Caves of Koilos", Types: []string{"Land"}, FixerColorID: White | Black}
	bear := &Card{Name: "Bear", Types: []string{"creature"}, ManaCost: []string{"1", "G", "G"}}

	assert.True(t, land.IsLand())
	assert.True(t, land.IsFixer())
	assert.False(t, land.IsCreature())
	assert.True(t, bear.IsCreature())
	assert.False(t, bear.IsFixer())
	assert.Equal(t, 2, bear.PipCount("G"))
	assert.Equal(t, Green, bear.CostColors())
	assert.True(t, bear.Equal(&Card{Name: "Bear"}))
	assert.False(t, bear.Equal(land))
}

func TestCardSliceHelpers(t *testing.T) {
	a := &Card{Name: "A"}
	b := &Card{Name: "B", Types: []string{TypeLand}}
	c := &Card{Name: "C", ManaCost: []string{"U"}}
	cards := []*Card{a, b, c}

	assert.Equal(t, []string{"A", "B", "C"}, Names(cards))
	assert.Equal(t, 2, CountNonlands(cards))
	assert.Equal(t, []*Card{a, c}, Nonlands(cards))
	assert.Equal(t, []*Card{a, c}, Without(cards, []*Card{{Name: "B"}}))
	assert.True(t, Contains(cards, &Card{Name: "C"}))
	assert.Equal(t, Blue, CostColorsOf(cards))
	assert.Same(t, c, ByName(cards)["C"])
}

func TestParseRawTags(t *testing.T) {
	tags, tier, err := ParseRawTags([]string{"Lifegain - Payoff", "Tier 2", "Fixer", "Tokens-Enabler", "A - B - C"})
	require.NoError(t, err)
	assert.Equal(t, PowerTier(2), tier)
	assert.Equal(t, []Tag{
		{Theme: "Lifegain", Role: RolePayoff},
		{Theme: "Tokens", Role: RoleEnabler},
	}, tags)

	_, tier, err = ParseRawTags([]string{"Tokens - Enabler"})
	require.NoError(t, err)
	assert.Equal(t, Untagged, tier)

	_, tier, err = ParseRawTags([]string{"Tier 0"})
	require.NoError(t, err)
	assert.NotEqual(t, Untagged, tier)

	_, _, err = ParseRawTags([]string{"Tier two"})
	assert.Error(t, err)

	_, _, err = ParseRawTags([]string{"Tier -1"})
	assert.Error(t, err)
}

func TestPowerRating(t *testing.T) {
	tests := []struct {
		tier    PowerTier
		want    float64
		wantErr bool
	}{
		{tier: 1, want: 1},
		{tier: 2, want: 0.7},
		{tier: 3, want: 0.4},
		{tier: 4, want: 0.1},
		{tier: Untagged, want: 0},
		{tier: 0, wantErr: true},
		{tier: 5, wantErr: true},
	}

	for _, tt := range tests {
		got, err := PowerRating(&Card{Name: "x", PowerTier: tt.tier})
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrUndefinedPowerTier), "tier %d", tt.tier)
			continue
		}
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "tier %d", tt.tier)
	}
}

func TestLoadCube(t *testing.T) {
	cards, err := LoadCube(
		filepath.Join("testdata", "common_neighbors.toml"),
		filepath.Join("testdata", "fixer_data.toml"),
	)
	require.NoError(t, err)
	require.Len(t, cards, 8)

	byName := ByName(cards)
	pridemate := byName["Ajani's Pridemate"]
	require.NotNil(t, pridemate)
	assert.Equal(t, White, pridemate.ColorID)
	assert.Equal(t, []string{"1", "W"}, pridemate.ManaCost)
	assert.Equal(t, PowerTier(2), pridemate.PowerTier)
	assert.ElementsMatch(t, []Tag{
		{Theme: "Lifegain", Role: RolePayoff},
		{Theme: "Tokens", Role: RoleEnabler},
	}, pridemate.Tags)
	assert.Equal(t, "m19", pridemate.Set)

	caves := byName["Caves of Koilos"]
	assert.True(t, caves.IsLand())
	assert.Equal(t, White|Black, caves.FixerColorID)
	assert.False(t, caves.IsTagged())

	for i := 1; i < len(cards); i++ {
		assert.Less(t, cards[i-1].Name, cards[i].Name, "cards are sorted by name")
	}
}

func TestParseCube_Errors(t *testing.T) {
	_, err := ParseCube([]byte(`["X"]
color_identity = "Q"`), nil)
	assert.Error(t, err)

	_, err = ParseCube([]byte(`not toml [`), nil)
	assert.Error(t, err)

	_, err = LoadCube(filepath.Join("testdata", "missing.toml"), "")
	assert.Error(t, err)
}

func TestParseCube_PowerTiers(t *testing.T) {
	cards, err := ParseCube([]byte(`["Zero"]
color_identity = "W"
types = ["creature"]
mana_cost = ["W"]
tags = ["Tier 0"]

["Plain"]
color_identity = "W"
types = ["creature"]
mana_cost = ["W"]
tags = ["Tokens - Enabler"]
`), nil)
	require.NoError(t, err)

	byName := ByName(cards)

	_, err = PowerRating(byName["Zero"])
	assert.ErrorIs(t, err, ErrUndefinedPowerTier)

	rating, err := PowerRating(byName["Plain"])
	require.NoError(t, err)
	assert.Zero(t, rating)
	assert.Equal(t, Untagged, byName["Plain"].PowerTier)
}
