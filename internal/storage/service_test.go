package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cube-drafter/internal/storage/models"
	"github.com/ramonehamilton/cube-drafter/internal/storage/repository"
)

func sampleDecks() []*models.TrialDeck {
	return []*models.TrialDeck{
		{Trial: 0, Seat: 0, MainColors: "WU", Edges: 40, AvgPower: 0.5, Nonlands: 23, Cards: []string{"Swords to Plowshares", "Counterspell"}},
		{Trial: 0, Seat: 1, MainColors: "BR", SplashColors: "G", Edges: 20, AvgPower: 0.3, Nonlands: 23, Cards: []string{"Lightning Bolt"}},
	}
}

func TestServiceSaveRun(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	run := &models.TrialRun{ID: "run-1", Strategy: "synergy-power-fixing", Seed: 7, Seats: 2, Phases: 3, CardsPerPack: 15, Trials: 1}
	require.NoError(t, service.SaveRun(ctx, run, sampleDecks()))
	assert.False(t, run.CreatedAt.IsZero())

	got, decks, err := service.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.Strategy, got.Strategy)
	assert.Equal(t, int64(7), got.Seed)
	require.Len(t, decks, 2)
	assert.Equal(t, "run-1", decks[0].RunID)
	assert.Equal(t, []string{"Lightning Bolt"}, decks[1].Cards)
	assert.Equal(t, "G", decks[1].SplashColors)

	summary, err := service.Summarize(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Decks)
	assert.InDelta(t, 30.0, summary.MeanEdges, 1e-9)
	assert.Equal(t, 40, summary.MaxEdges)
	assert.InDelta(t, 0.4, summary.MeanAvgPower, 1e-9)
}

func TestServiceSaveRunDuplicateID(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	run := &models.TrialRun{ID: "run-dup", Strategy: "random", Seats: 2, Phases: 3, CardsPerPack: 15}
	require.NoError(t, service.SaveRun(ctx, run, sampleDecks()))

	extra := append(sampleDecks(), &models.TrialDeck{Trial: 1, Seat: 0, MainColors: "GW", Cards: []string{}})
	again := &models.TrialRun{ID: "run-dup", Strategy: "random", Seats: 2, Phases: 3, CardsPerPack: 15}
	require.Error(t, service.SaveRun(ctx, again, extra))

	stored, err := service.Trials().GetDecksByRun(ctx, "run-dup")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "failed save leaves no decks behind")
}

func TestServiceListAndDelete(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		run := &models.TrialRun{ID: id, Strategy: "random", Seats: 6, Phases: 3, CardsPerPack: 15, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, service.SaveRun(ctx, run, sampleDecks()))
	}

	runs, err := service.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)

	require.NoError(t, service.DeleteRun(ctx, "mid"))
	_, _, err = service.GetRun(ctx, "mid")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	decks, err := service.Trials().GetDecksByRun(ctx, "mid")
	require.NoError(t, err)
	assert.Empty(t, decks, "decks are deleted with their run")

	assert.ErrorIs(t, service.DeleteRun(ctx, "mid"), repository.ErrNotFound)

	_, err = service.Summarize(ctx, "mid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
