package watch

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/cube/cubetest"
	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
	"github.com/ramonehamilton/cube-drafter/internal/draftlog"
)

func testCards() []*cube.Card {
	cards := cubetest.Series("Spirit", "W", 6, cubetest.Enabler("Spirits"))
	cards = append(cards, cubetest.Series("Payoff", "U", 6, cubetest.Payoff("Spirits"))...)
	return cards
}

// writeLog drafts cards with first-card pickers and writes the log to path.
func writeLog(t *testing.T, path string, cards []*cube.Card, seed int64) {
	t.Helper()

	info := draft.Info{Seats: 2, Phases: 2, CardsPerPack: 3}
	first := draft.PickerFunc(func(pack, owned []*cube.Card, info draft.Info) (*cube.Card, error) {
		return pack[0], nil
	})
	drafters := []*draft.Drafter{draft.NewDrafter(0, first), draft.NewDrafter(1, first)}
	controller, err := draft.Create(info, drafters, cards, rand.New(rand.NewSource(seed)), nil)
	require.NoError(t, err)
	require.NoError(t, controller.Run(context.Background()))
	require.NoError(t, draftlog.Write(path, info, drafters))
}

func waitUpdate(t *testing.T, updates <-chan *Update) *Update {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
		return nil
	}
}

func TestProcess(t *testing.T) {
	cards := testCards()
	path := filepath.Join(t.TempDir(), "draft-log.toml")
	writeLog(t, path, cards, 1)

	w, err := New(Config{LogPath: path, Cards: cards, Deckbuild: deckbuild.DefaultOptions(), OnUpdate: func(*Update) {}})
	require.NoError(t, err)

	update, err := w.Process()
	require.NoError(t, err)
	require.Len(t, update.Decks, 2)
	for i, deck := range update.Decks {
		assert.Equal(t, i, deck.Seat)
		assert.Len(t, deck.Pool, 6)
		require.NoError(t, deck.Err)
		assert.Equal(t, 6, deck.Build.Nonlands())
	}
}

func TestProcessUnknownCard(t *testing.T) {
	cards := testCards()
	path := filepath.Join(t.TempDir(), "draft-log.toml")
	writeLog(t, path, cards, 1)

	w, err := New(Config{LogPath: path, Cards: cards[:2], OnUpdate: func(*Update) {}})
	require.NoError(t, err)

	_, err = w.Process()
	assert.Error(t, err)
}

func TestStartRebuildsOnChange(t *testing.T) {
	cards := testCards()
	path := filepath.Join(t.TempDir(), "draft-log.toml")
	writeLog(t, path, cards, 1)

	updates := make(chan *Update, 4)
	w, err := New(Config{
		LogPath:      path,
		Cards:        cards,
		Deckbuild:    deckbuild.DefaultOptions(),
		OnUpdate:     func(u *Update) { updates <- u },
		PollInterval: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	first := waitUpdate(t, updates)
	assert.Len(t, first.Decks, 2)

	writeLog(t, path, cards, 2)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second := waitUpdate(t, updates)
	assert.Len(t, second.Decks, 2)

	w.Stop()
	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStartWaitsForFile(t *testing.T) {
	cards := testCards()
	path := filepath.Join(t.TempDir(), "draft-log.toml")

	updates := make(chan *Update, 4)
	w, err := New(Config{
		LogPath:      path,
		Cards:        cards,
		Deckbuild:    deckbuild.DefaultOptions(),
		OnUpdate:     func(u *Update) { updates <- u },
		PollInterval: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	writeLog(t, path, cards, 3)
	u := waitUpdate(t, updates)
	assert.Len(t, u.Log.Drafters, 2)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{OnUpdate: func(*Update) {}})
	assert.Error(t, err)

	_, err = New(Config{LogPath: "draft-log.toml"})
	assert.Error(t, err)
}
