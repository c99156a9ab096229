package deckexport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/cube/cubetest"
)

func TestParseDecklist(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "cockatrice",
			input: "1 Cloudfin Raptor\n1 Man-o'-War\n\n1 Sideboard Card\n",
			want:  []string{"Cloudfin Raptor", "Man-o'-War"},
		},
		{
			name:  "header line",
			input: "Exported from CubeTutor.com\n1 Cloudfin Raptor\n",
			want:  []string{"Cloudfin Raptor"},
		},
		{
			name:  "arena with set codes",
			input: "Deck\n1 Swords to Plowshares (ICE)\n2 Island\n\nSideboard\n1 Lightning Bolt\n",
			want:  []string{"Swords to Plowshares", "Island", "Island"},
		},
		{
			name:  "leading blank lines",
			input: "\n\n1 Opt\n",
			want:  []string{"Opt"},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecklist(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountEdges(t *testing.T) {
	cards := []*cube.Card{
		cubetest.Card("Enabler A", "U", cubetest.Enabler("Blink")),
		cubetest.Card("Enabler B", "U", cubetest.Enabler("Blink")),
		cubetest.Card("Payoff", "W", cubetest.Payoff("Blink")),
		cubetest.Card("Vanilla", "G"),
	}

	edges, err := CountEdges([]string{"Enabler A", "Enabler B", "Payoff", "Vanilla"}, cards)
	require.NoError(t, err)
	assert.Equal(t, 2, edges)

	edges, err = CountEdges([]string{"Enabler A", "Enabler B"}, cards)
	require.NoError(t, err)
	assert.Equal(t, 0, edges)

	_, err = CountEdges([]string{"Nope"}, cards)
	assert.Error(t, err)
}
