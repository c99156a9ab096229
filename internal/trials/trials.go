// Package trials runs batches of simulated drafts, builds every drafted
// pool and summarizes how much synergy and power the decks ended up with.
package trials

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
	"github.com/ramonehamilton/cube-drafter/internal/deckexport"
	"github.com/ramonehamilton/cube-drafter/internal/draft"
	"github.com/ramonehamilton/cube-drafter/internal/draftlog"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
	"github.com/ramonehamilton/cube-drafter/internal/metrics"
	"github.com/ramonehamilton/cube-drafter/internal/picker"
	"github.com/ramonehamilton/cube-drafter/internal/storage/models"
)

// Store persists a finished run.
type Store interface {
	SaveRun(ctx context.Context, run *models.TrialRun, decks []*models.TrialDeck) error
}

// Options configures a Runner.
type Options struct {
	Trials int
	// Workers bounds concurrent trials; 0 uses one per CPU.
	Workers int
	Info    draft.Info
	// Seed is the first trial's seed; trial i uses Seed+i.
	Seed      int64
	Deckbuild deckbuild.Options

	// OutputDir receives a draft log and one decklist per seat for every
	// trial. Empty writes nothing.
	OutputDir string

	Metrics *metrics.SimulationMetrics
	Store   Store
	Logger  *logger.Logger
}

// Deck is the outcome of building one seat's pool.
type Deck struct {
	Seat     int
	Pool     []*cube.Card
	Build    *deckbuild.Build
	Edges    int
	AvgPower float64
	// Err is set when no color assignment produced a deck.
	Err error
}

// Trial is one full draft and its decks.
type Trial struct {
	Index    int
	Seed     int64
	Drafters []*draft.Drafter
	Decks    []Deck
}

// Summary aggregates the decks of every trial.
type Summary struct {
	Decks       int
	Failed      int
	MeanEdges   float64
	MedianEdges float64
	MeanPower   float64
	MedianPower float64
}

// Report is the result of Runner.Run.
type Report struct {
	RunID   string
	Trials  []*Trial
	Summary Summary
}

// Runner drafts with pickers from one factory. The factory is shared
// read-only by all workers.
type Runner struct {
	cards   []*cube.Card
	factory *picker.Factory
	opts    Options
}

// NewRunner creates a runner over cards.
func NewRunner(cards []*cube.Card, factory *picker.Factory, opts Options) (*Runner, error) {
	if factory == nil {
		return nil, fmt.Errorf("picker factory is required")
	}
	if err := opts.Info.Validate(); err != nil {
		return nil, fmt.Errorf("invalid draft info: %w", err)
	}
	if opts.Trials < 0 {
		return nil, fmt.Errorf("trial count cannot be negative: %d", opts.Trials)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Deckbuild.Logger == nil {
		opts.Deckbuild.Logger = opts.Logger
	}
	return &Runner{cards: cards, factory: factory, opts: opts}, nil
}

// Run executes every trial, at most Workers at a time, and stores the run
// when a Store is configured.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Trials: make([]*Trial, r.opts.Trials),
	}
	r.opts.Logger.Info("Starting run %s: %d trials, %d workers, strategy %s", report.RunID, r.opts.Trials, r.opts.Workers, r.factory.Strategy())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := 0; i < r.opts.Trials; i++ {
		i := i
		g.Go(func() error {
			trial, err := r.RunTrial(gctx, i, r.opts.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			report.Trials[i] = trial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Summary = Summarize(report.Trials)

	if r.opts.Store != nil {
		if err := r.opts.Store.SaveRun(ctx, r.runRecord(report.RunID), deckRecords(report.Trials)); err != nil {
			return nil, fmt.Errorf("store run %s: %w", report.RunID, err)
		}
	}

	r.opts.Logger.Info("Finished run %s: %d decks, %d failed builds", report.RunID, report.Summary.Decks, report.Summary.Failed)
	return report, nil
}

// RunTrial drafts once with seed and builds every pool.
func (r *Runner) RunTrial(ctx context.Context, index int, seed int64) (*Trial, error) {
	rng := rand.New(rand.NewSource(seed))

	drafters := make([]*draft.Drafter, r.opts.Info.Seats)
	for seat := range drafters {
		p := metrics.TimePicker(r.factory.Create(rng.Int63()), r.opts.Metrics)
		drafters[seat] = draft.NewDrafter(seat, p)
	}

	controller, err := draft.Create(r.opts.Info, drafters, r.cards, rng, r.opts.Logger)
	if err != nil {
		return nil, err
	}
	if err := controller.Run(ctx); err != nil {
		return nil, err
	}
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordDraft()
	}

	trial := &Trial{Index: index, Seed: seed, Drafters: drafters}
	builder := deckbuild.NewBuilder(r.opts.Deckbuild)
	for _, d := range drafters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		deck, err := r.buildDeck(builder, d)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", d.Seat, err)
		}
		trial.Decks = append(trial.Decks, deck)
	}

	if r.opts.OutputDir != "" {
		if err := r.writeOutput(trial); err != nil {
			return nil, err
		}
	}
	return trial, nil
}

func (r *Runner) buildDeck(builder *deckbuild.Builder, d *draft.Drafter) (Deck, error) {
	deck := Deck{Seat: d.Seat, Pool: d.Owned()}

	start := time.Now()
	build, err := builder.Best(deck.Pool)
	elapsed := time.Since(start)

	if err != nil {
		if !errors.Is(err, deckbuild.ErrNoBuild) {
			return deck, err
		}
		if r.opts.Metrics != nil {
			r.opts.Metrics.RecordBuild(elapsed, nil, len(deckbuild.Attempts()))
		}
		r.opts.Logger.Warn("Seat %d: %v", d.Seat, err)
		deck.Err = err
		return deck, nil
	}
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordBuild(elapsed, build, 0)
	}

	power, err := AvgPower(build.Cards)
	if err != nil {
		return deck, err
	}
	deck.Build = build
	deck.Edges = build.Edges
	deck.AvgPower = power
	return deck, nil
}

func (r *Runner) writeOutput(trial *Trial) error {
	logPath := filepath.Join(r.opts.OutputDir, fmt.Sprintf("draft-log_%d.toml", trial.Index))
	if err := draftlog.Write(logPath, r.opts.Info, trial.Drafters); err != nil {
		return err
	}
	for _, deck := range trial.Decks {
		if deck.Build == nil {
			continue
		}
		deckPath := filepath.Join(r.opts.OutputDir, fmt.Sprintf("deck_%d_%d.txt", trial.Index, deck.Seat))
		if err := deckexport.WriteFile(deckPath, deckexport.FormatCockatrice, deck.Build, deck.Pool); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runRecord(id string) *models.TrialRun {
	return &models.TrialRun{
		ID:           id,
		Strategy:     string(r.factory.Strategy()),
		Seed:         r.opts.Seed,
		Seats:        r.opts.Info.Seats,
		Phases:       r.opts.Info.Phases,
		CardsPerPack: r.opts.Info.CardsPerPack,
		Trials:       r.opts.Trials,
		CreatedAt:    time.Now().UTC(),
	}
}

func deckRecords(trials []*Trial) []*models.TrialDeck {
	var records []*models.TrialDeck
	for _, trial := range trials {
		for _, deck := range trial.Decks {
			if deck.Build == nil {
				continue
			}
			records = append(records, &models.TrialDeck{
				Trial:        trial.Index,
				Seat:         deck.Seat,
				MainColors:   deck.Build.Main.String(),
				SplashColors: splashString(deck.Build.Splash),
				Edges:        deck.Edges,
				AvgPower:     deck.AvgPower,
				Nonlands:     deck.Build.Nonlands(),
				Cards:        cube.Names(deck.Build.Cards),
			})
		}
	}
	return records
}

func splashString(splash cube.ColorSet) string {
	if splash == 0 {
		return ""
	}
	return splash.String()
}

// AvgPower is the mean power rating of the nonland cards in deck, or 0
// without nonlands.
func AvgPower(deck []*cube.Card) (float64, error) {
	nonlands := cube.Nonlands(deck)
	if len(nonlands) == 0 {
		return 0, nil
	}
	var sum float64
	for _, c := range nonlands {
		rating, err := cube.PowerRating(c)
		if err != nil {
			return 0, err
		}
		sum += rating
	}
	return sum / float64(len(nonlands)), nil
}

// Summarize computes mean and median edges and power over every built deck.
func Summarize(trials []*Trial) Summary {
	var edges, power []float64
	var summary Summary
	for _, trial := range trials {
		for _, deck := range trial.Decks {
			if deck.Build == nil {
				summary.Failed++
				continue
			}
			edges = append(edges, float64(deck.Edges))
			power = append(power, deck.AvgPower)
		}
	}
	summary.Decks = len(edges)
	summary.MeanEdges = mean(edges)
	summary.MedianEdges = median(edges)
	summary.MeanPower = mean(power)
	summary.MedianPower = median(power)
	return summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
