package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/cube-drafter/internal/storage/models"
	"github.com/ramonehamilton/cube-drafter/internal/storage/repository"
)

// Service provides high-level operations for storing trial results.
type Service struct {
	db     *DB
	trials repository.TrialRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:     db,
		trials: repository.NewTrialRepository(db.Conn()),
	}
}

// SaveRun stores a run and all of its decks atomically.
func (s *Service) SaveRun(ctx context.Context, run *models.TrialRun, decks []*models.TrialDeck) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewTrialRepository(tx)
		if err := repo.CreateRun(ctx, run); err != nil {
			return err
		}
		for _, deck := range decks {
			deck.RunID = run.ID
			if err := repo.SaveDeck(ctx, deck); err != nil {
				return fmt.Errorf("failed to store deck: %w", err)
			}
		}
		return nil
	})
}

// GetRun returns a stored run with its decks.
func (s *Service) GetRun(ctx context.Context, id string) (*models.TrialRun, []*models.TrialDeck, error) {
	run, err := s.trials.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	decks, err := s.trials.GetDecksByRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, decks, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*models.TrialRun, error) {
	return s.trials.ListRuns(ctx, limit)
}

// Summarize aggregates the decks of a run.
func (s *Service) Summarize(ctx context.Context, runID string) (*models.TrialSummary, error) {
	if _, err := s.trials.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.trials.Summarize(ctx, runID)
}

// DeleteRun removes a run and its decks.
func (s *Service) DeleteRun(ctx context.Context, id string) error {
	return s.trials.DeleteRun(ctx, id)
}

// Trials returns the trial repository.
func (s *Service) Trials() repository.TrialRepository {
	return s.trials
}

// Backup writes a verified copy of the database to dir.
func (s *Service) Backup(ctx context.Context, dir string) (string, error) {
	return s.db.Backup(ctx, dir)
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}
