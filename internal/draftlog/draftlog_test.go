package draftlog

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/cube/cubetest"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
)

func firstCard(pack, owned []*cube.Card, info draft.Info) (*cube.Card, error) {
	return pack[0], nil
}

func runDraft(t *testing.T) (draft.Info, []*draft.Drafter, []*cube.Card) {
	t.Helper()

	info := draft.Info{Seats: 4, Phases: 3, CardsPerPack: 5}
	cards := cubetest.Series("Card", "W", info.CardsNeeded())

	drafters := make([]*draft.Drafter, info.Seats)
	for i := range drafters {
		drafters[i] = draft.NewDrafter(i, draft.PickerFunc(firstCard))
	}
	controller, err := draft.Create(info, drafters, cards, rand.New(rand.NewSource(3)), nil)
	require.NoError(t, err)
	require.NoError(t, controller.Run(context.Background()))
	return info, drafters, cards
}

func TestDumpsAndParse(t *testing.T) {
	info, drafters, cards := runDraft(t)

	data, err := Dumps(info, drafters)
	require.NoError(t, err)

	log, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, info, log.Info)
	require.Len(t, log.Drafters, len(drafters))

	for i, d := range drafters {
		loaded := log.Drafters[i]
		assert.Equal(t, i, loaded.Drafter)
		assert.Equal(t, cube.Names(d.Owned()), loaded.Owned())

		history := d.PackHistory()
		require.Len(t, loaded.Picks, len(history))
		for j, pack := range history {
			assert.Equal(t, cube.Names(pack), loaded.Picks[j].Pack)
		}
	}

	pools, err := log.Pools(cards)
	require.NoError(t, err)
	for i, d := range drafters {
		assert.Equal(t, d.Owned(), pools[i])
	}
}

func TestParseFormat(t *testing.T) {
	data := `
[draft_info]
num_drafters = 2
num_phases = 1
cards_per_pack = 2

[[full_draft]]
drafter = 0
picks = [{pack = ["A", "B"], pick = "B"}, {pack = ["C"], pick = "C"}]

[[full_draft]]
drafter = 1
picks = [{pack = ["C", "D"], pick = "D"}, {pack = ["A"], pick = "A"}]
`
	log, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, draft.Info{Seats: 2, Phases: 1, CardsPerPack: 2}, log.Info)
	assert.Equal(t, []string{"B", "C"}, log.Drafters[0].Owned())
	assert.Equal(t, []string{"D", "A"}, log.Drafters[1].Owned())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid toml", "[draft_info"},
		{"empty", ""},
		{"missing drafters", `
[draft_info]
num_drafters = 2
num_phases = 1
cards_per_pack = 1

[[full_draft]]
drafter = 0
picks = [{pack = ["A"], pick = "A"}]
`},
		{"pick not in pack", `
[[full_draft]]
drafter = 0
picks = [{pack = ["A"], pick = "Z"}]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestPoolsUnknownCard(t *testing.T) {
	log := &Log{Drafters: []DrafterLog{{Picks: []Pick{{Pack: []string{"Ghost"}, Pick: "Ghost"}}}}}

	_, err := log.Pools(cubetest.Series("Card", "W", 3))
	assert.Error(t, err)
}

func TestWriteAndLoad(t *testing.T) {
	info, drafters, _ := runDraft(t)
	path := filepath.Join(t.TempDir(), "logs", "draft-log_0.toml")

	require.NoError(t, Write(path, info, drafters))

	log, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, log.Drafters, info.Seats)
	assert.Len(t, log.Drafters[0].Picks, info.PicksPerDrafter())

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
