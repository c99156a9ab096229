package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	assert.Equal(t, "test.db", config.Path)
	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, config.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, config.BusyTimeout)
	assert.Equal(t, "WAL", config.JournalMode)
	assert.Equal(t, "NORMAL", config.Synchronous)
	assert.False(t, config.AutoMigrate)
}

func TestOpen(t *testing.T) {
	db, err := Open(DefaultConfig(MemoryPath))
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	assert.NotNil(t, db.Conn())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "trials.db")
	db, err := Open(DefaultConfig(path))
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
}

func TestOpenWithNilConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	db, err := Open(DefaultConfig(MemoryPath))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(), "ping should fail after close")
}

func TestOpenAutoMigrateInMemory(t *testing.T) {
	db := NewTestDB(t)

	var count int
	err := db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('trial_runs', 'trial_decks')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Migrating twice is a no-op.
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	insert := func(tx *sql.Tx, id string) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO trial_runs (id, strategy, seed, seats, phases, cards_per_pack) VALUES (?, 'random', 1, 6, 3, 15)`, id)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM trial_runs`).Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
			return insert(tx, "committed")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := insert(tx, "rolled-back"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = db.WithTransaction(ctx, func(tx *sql.Tx) error {
				_ = insert(tx, "panicked")
				panic("boom")
			})
		})
		assert.Equal(t, 1, count())
	})
}
