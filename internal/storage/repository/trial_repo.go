package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ramonehamilton/cube-drafter/internal/storage/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TrialRepository provides methods for managing trial runs and their decks.
type TrialRepository interface {
	// Runs
	CreateRun(ctx context.Context, run *models.TrialRun) error
	GetRun(ctx context.Context, id string) (*models.TrialRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.TrialRun, error)
	DeleteRun(ctx context.Context, id string) error

	// Decks
	SaveDeck(ctx context.Context, deck *models.TrialDeck) error
	GetDecksByRun(ctx context.Context, runID string) ([]*models.TrialDeck, error)

	// Aggregation
	Summarize(ctx context.Context, runID string) (*models.TrialSummary, error)
}

type trialRepository struct {
	db DBTX
}

// NewTrialRepository creates a new trial repository.
func NewTrialRepository(db DBTX) TrialRepository {
	return &trialRepository{db: db}
}

// CreateRun inserts a trial run.
func (r *trialRepository) CreateRun(ctx context.Context, run *models.TrialRun) error {
	query := `
		INSERT INTO trial_runs (id, strategy, seed, seats, phases, cards_per_pack, trials, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Strategy,
		run.Seed,
		run.Seats,
		run.Phases,
		run.CardsPerPack,
		run.Trials,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trial run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a trial run by ID.
func (r *trialRepository) GetRun(ctx context.Context, id string) (*models.TrialRun, error) {
	query := `
		SELECT id, strategy, seed, seats, phases, cards_per_pack, trials, created_at
		FROM trial_runs
		WHERE id = ?
	`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trial run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trial run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (r *trialRepository) ListRuns(ctx context.Context, limit int) ([]*models.TrialRun, error) {
	query := `
		SELECT id, strategy, seed, seats, phases, cards_per_pack, trials, created_at
		FROM trial_runs
		ORDER BY created_at DESC, id
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trial runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.TrialRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trial run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and, by cascade, its decks.
func (r *trialRepository) DeleteRun(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trial_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trial run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trial run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("trial run %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveDeck inserts a deck, replacing any deck already stored for the same
// run, trial and seat. deck.ID is set from the insert.
func (r *trialRepository) SaveDeck(ctx context.Context, deck *models.TrialDeck) error {
	cards, err := json.Marshal(deck.Cards)
	if err != nil {
		return fmt.Errorf("marshal deck cards: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO trial_decks (run_id, trial, seat, main_colors, splash_colors, edges, avg_power, nonlands, cards)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		deck.RunID,
		deck.Trial,
		deck.Seat,
		deck.MainColors,
		deck.SplashColors,
		deck.Edges,
		deck.AvgPower,
		deck.Nonlands,
		string(cards),
	)
	if err != nil {
		return fmt.Errorf("insert deck for run %s trial %d seat %d: %w", deck.RunID, deck.Trial, deck.Seat, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get deck id: %w", err)
	}
	deck.ID = id
	return nil
}

// GetDecksByRun returns a run's decks ordered by trial and seat.
func (r *trialRepository) GetDecksByRun(ctx context.Context, runID string) ([]*models.TrialDeck, error) {
	query := `
		SELECT id, run_id, trial, seat, main_colors, splash_colors, edges, avg_power, nonlands, cards
		FROM trial_decks
		WHERE run_id = ?
		ORDER BY trial, seat
	`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get decks for run %s: %w", runID, err)
	}
	defer rows.Close()

	var decks []*models.TrialDeck
	for rows.Next() {
		deck := &models.TrialDeck{}
		var cards string
		if err := rows.Scan(
			&deck.ID,
			&deck.RunID,
			&deck.Trial,
			&deck.Seat,
			&deck.MainColors,
			&deck.SplashColors,
			&deck.Edges,
			&deck.AvgPower,
			&deck.Nonlands,
			&cards,
		); err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		if err := json.Unmarshal([]byte(cards), &deck.Cards); err != nil {
			return nil, fmt.Errorf("unmarshal deck %d cards: %w", deck.ID, err)
		}
		decks = append(decks, deck)
	}
	return decks, rows.Err()
}

// Summarize aggregates a run's decks.
func (r *trialRepository) Summarize(ctx context.Context, runID string) (*models.TrialSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(edges), 0), COALESCE(MAX(edges), 0), COALESCE(AVG(avg_power), 0)
		FROM trial_decks
		WHERE run_id = ?
	`
	summary := &models.TrialSummary{RunID: runID}
	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&summary.Decks,
		&summary.MeanEdges,
		&summary.MaxEdges,
		&summary.MeanAvgPower,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	return summary, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.TrialRun, error) {
	run := &models.TrialRun{}
	err := s.Scan(
		&run.ID,
		&run.Strategy,
		&run.Seed,
		&run.Seats,
		&run.Phases,
		&run.CardsPerPack,
		&run.Trials,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
