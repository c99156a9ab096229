// Package watch rebuilds decks whenever a draft log file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
	"github.com/ramonehamilton/cube-drafter/internal/draftlog"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
)

// SeatDeck is the build for one drafter in the log.
type SeatDeck struct {
	Seat  int
	Pool  []*cube.Card
	Build *deckbuild.Build
	// Err is set when the pool could not be built.
	Err error
}

// Update is sent after every successful reload of the log.
type Update struct {
	Log       *draftlog.Log
	Decks     []SeatDeck
	Timestamp time.Time
}

// Config configures a Watcher.
type Config struct {
	LogPath   string
	Cards     []*cube.Card
	Deckbuild deckbuild.Options
	OnUpdate  func(*Update)

	// PollInterval is the backup check for missed file events.
	PollInterval time.Duration
	Logger       *logger.Logger
}

// Watcher monitors a draft log file.
type Watcher struct {
	logPath      string
	cards        []*cube.Card
	builder      *deckbuild.Builder
	onUpdate     func(*Update)
	pollInterval time.Duration
	logger       *logger.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	lastMod  time.Time
}

// New creates a watcher.
func New(config Config) (*Watcher, error) {
	if config.LogPath == "" {
		return nil, fmt.Errorf("draft log path is required")
	}
	if config.OnUpdate == nil {
		return nil, fmt.Errorf("update callback is required")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.Deckbuild.Logger == nil {
		config.Deckbuild.Logger = config.Logger
	}
	return &Watcher{
		logPath:      config.LogPath,
		cards:        config.Cards,
		builder:      deckbuild.NewBuilder(config.Deckbuild),
		onUpdate:     config.OnUpdate,
		pollInterval: config.PollInterval,
		logger:       config.Logger,
		stopChan:     make(chan struct{}),
	}, nil
}

// Start processes the log once if it exists and then again after every
// change until ctx is done or Stop is called. The directory is watched so
// files replaced by rename are still seen.
func (w *Watcher) Start(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(w.logPath)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	w.refresh()
	w.logger.Info("Watching %s for draft log changes...", w.logPath)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	target := filepath.Clean(w.logPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.refresh()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error: %v", err)
		case <-ticker.C:
			w.refresh()
		}
	}
}

// Stop ends Start. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// refresh reprocesses the log if its modification time moved.
func (w *Watcher) refresh() {
	info, err := os.Stat(w.logPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("Failed to stat draft log: %v", err)
		}
		return
	}
	if !info.ModTime().After(w.lastMod) {
		return
	}

	update, err := w.Process()
	if err != nil {
		// A log caught mid-write fails to parse; the next write retries.
		w.logger.Warn("Skipping draft log update: %v", err)
		return
	}
	w.lastMod = info.ModTime()
	w.onUpdate(update)
}

// Process loads the log and builds every drafter's pool.
func (w *Watcher) Process() (*Update, error) {
	log, err := draftlog.Load(w.logPath)
	if err != nil {
		return nil, err
	}
	pools, err := log.Pools(w.cards)
	if err != nil {
		return nil, err
	}

	update := &Update{Log: log, Timestamp: time.Now()}
	for i, pool := range pools {
		deck := SeatDeck{Seat: log.Drafters[i].Drafter, Pool: pool}
		deck.Build, deck.Err = w.builder.Best(pool)
		if deck.Err != nil {
			w.logger.Debug("Seat %d: %v", deck.Seat, deck.Err)
		}
		update.Decks = append(update.Decks, deck)
	}
	return update, nil
}
