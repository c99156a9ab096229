package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ramonehamilton/cube-drafter/internal/config"
	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/deckbuild"
	"github.com/ramonehamilton/cube-drafter/internal/deckexport"
	"github.com/ramonehamilton/cube-drafter/internal/draftlog"
	"github.com/ramonehamilton/cube-drafter/internal/metrics"
	"github.com/ramonehamilton/cube-drafter/internal/storage"
	"github.com/ramonehamilton/cube-drafter/internal/trials"
	"github.com/ramonehamilton/cube-drafter/internal/watch"
)

// draftFlags override the [draft] and [picker] config sections.
type draftFlags struct {
	strategy     *string
	seed         *int64
	seats        *int
	phases       *int
	cardsPerPack *int
}

func addDraftFlags(fs *flag.FlagSet) *draftFlags {
	return &draftFlags{
		strategy:     fs.String("strategy", "", "Picker strategy: synergy-power-fixing, power-fixing, greedy-synergy, random"),
		seed:         fs.Int64("seed", 0, "Random seed (0 = config value, or the clock)"),
		seats:        fs.Int("seats", 0, "Number of drafters"),
		phases:       fs.Int("phases", 0, "Number of packs per drafter"),
		cardsPerPack: fs.Int("cards-per-pack", 0, "Cards in each pack"),
	}
}

func (d *draftFlags) apply(cfg *config.Config) {
	if *d.strategy != "" {
		cfg.Picker.Strategy = *d.strategy
	}
	if *d.seed != 0 {
		cfg.Draft.Seed = *d.seed
	}
	if *d.seats > 0 {
		cfg.Draft.Seats = *d.seats
	}
	if *d.phases > 0 {
		cfg.Draft.Phases = *d.phases
	}
	if *d.cardsPerPack > 0 {
		cfg.Draft.CardsPerPack = *d.cardsPerPack
	}
}

func parseFormat(s string) deckexport.Format {
	format, err := deckexport.ParseFormat(s)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return format
}

func printDeck(seat int, build *deckbuild.Build, pool []*cube.Card, format deckexport.Format) {
	fmt.Printf("--- Seat %d ---\n", seat)
	fmt.Print(deckexport.Summary(build, pool))
	text, err := deckexport.Export(format, build, pool)
	if err != nil {
		log.Fatalf("Error exporting deck: %v", err)
	}
	fmt.Println()
	fmt.Println(text)
	fmt.Println()
}

func runDraftCommand(args []string) {
	fs := flag.NewFlagSet("draft", flag.ExitOnError)
	common := addCommonFlags(fs)
	draftOpts := addDraftFlags(fs)
	out := fs.String("out", "draft-log.toml", "Draft log output file")
	formatName := fs.String("format", string(deckexport.FormatCockatrice), "Deck format: cockatrice, arena")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg, lg := common.load()
	draftOpts.apply(cfg)
	validate(cfg)
	format := parseFormat(*formatName)

	cards := loadCards(cfg)
	runner, err := trials.NewRunner(cards, newFactory(cfg, cards, lg), trials.Options{
		Trials:    1,
		Info:      cfg.DraftInfo(),
		Deckbuild: cfg.DeckbuildOptions(),
		Logger:    lg,
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	s := seed(cfg)
	lg.Info("Drafting %s with seed %d", cfg.DraftInfo(), s)
	trial, err := runner.RunTrial(context.Background(), 0, s)
	if err != nil {
		log.Fatalf("Error running draft: %v", err)
	}

	if err := draftlog.Write(*out, cfg.DraftInfo(), trial.Drafters); err != nil {
		log.Fatalf("Error writing draft log: %v", err)
	}
	lg.Info("Draft log written to %s", *out)

	for _, deck := range trial.Decks {
		if deck.Err != nil {
			fmt.Printf("--- Seat %d ---\n%v\n\n", deck.Seat, deck.Err)
			continue
		}
		printDeck(deck.Seat, deck.Build, deck.Pool, format)
	}
}

func runBuildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	common := addCommonFlags(fs)
	logPath := fs.String("log", "draft-log.toml", "Draft log to build from")
	seat := fs.Int("seat", -1, "Only build this seat")
	formatName := fs.String("format", string(deckexport.FormatCockatrice), "Deck format: cockatrice, arena")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg, lg := common.load()
	validate(cfg)
	format := parseFormat(*formatName)
	cards := loadCards(cfg)

	draftLog, err := draftlog.Load(*logPath)
	if err != nil {
		log.Fatalf("Error loading draft log: %v", err)
	}
	pools, err := draftLog.Pools(cards)
	if err != nil {
		log.Fatalf("Error resolving draft log cards: %v", err)
	}

	opts := cfg.DeckbuildOptions()
	opts.Logger = lg
	builder := deckbuild.NewBuilder(opts)
	for i, pool := range pools {
		drafter := draftLog.Drafters[i].Drafter
		if *seat >= 0 && drafter != *seat {
			continue
		}
		build, err := builder.Best(pool)
		if err != nil {
			fmt.Printf("--- Seat %d ---\n%v\n\n", drafter, err)
			continue
		}
		printDeck(drafter, build, pool, format)
	}
}

func runTrialsCommand(args []string) {
	fs := flag.NewFlagSet("trials", flag.ExitOnError)
	common := addCommonFlags(fs)
	draftOpts := addDraftFlags(fs)
	n := fs.Int("n", 0, "Number of drafts to run (overrides config)")
	workers := fs.Int("workers", 0, "Concurrent drafts (overrides config)")
	dir := fs.String("dir", "", "Output directory for draft logs and decklists (overrides config)")
	showMetrics := fs.Bool("metrics", false, "Print pick and build latency statistics")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg, lg := common.load()
	draftOpts.apply(cfg)
	if *n > 0 {
		cfg.Trials.Count = *n
	}
	if *workers > 0 {
		cfg.Trials.Workers = *workers
	}
	if *dir != "" {
		cfg.Trials.OutputDir = *dir
	}
	validate(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cards := loadCards(cfg)
	m := metrics.NewSimulationMetrics()
	opts := trials.Options{
		Trials:    cfg.Trials.Count,
		Workers:   cfg.Trials.Workers,
		Info:      cfg.DraftInfo(),
		Seed:      seed(cfg),
		Deckbuild: cfg.DeckbuildOptions(),
		OutputDir: cfg.Trials.OutputDir,
		Metrics:   m,
		Logger:    lg,
	}
	if service := openStore(cfg); service != nil {
		defer service.Close()
		opts.Store = service
	}

	runner, err := trials.NewRunner(cards, newFactory(cfg, cards, lg), opts)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	report, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("Error running trials: %v", err)
	}

	s := report.Summary
	fmt.Printf("Run: %s\n", report.RunID)
	fmt.Printf("Decks built: %d (%d failed)\n", s.Decks, s.Failed)
	fmt.Printf("Mean # of edges: %.2f\n", s.MeanEdges)
	fmt.Printf("Median # of edges: %.2f\n", s.MedianEdges)
	fmt.Printf("Mean avg deck power: %.3f\n", s.MeanPower)
	fmt.Printf("Median avg deck power: %.3f\n", s.MedianPower)

	if *showMetrics {
		stats := m.GetStats()
		fmt.Println()
		fmt.Printf("Picks: %d (p50 %.2fms, p95 %.2fms)\n", stats.PicksMade, stats.PickLatency.P50, stats.PickLatency.P95)
		fmt.Printf("Builds: %d (p50 %.2fms, p95 %.2fms)\n", stats.BuildsCompleted, stats.BuildLatency.P50, stats.BuildLatency.P95)
		fmt.Printf("Color assignments: %d tried, %.1f%% failed\n", stats.BuildAttempts, stats.FailureRate)
		fmt.Printf("Elapsed: %s\n", stats.Uptime)
	}
}

func runEdgesCommand(args []string) {
	fs := flag.NewFlagSet("edges", flag.ExitOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() != 1 {
		fmt.Println("Usage: cube-drafter edges [options] <decklist>")
		os.Exit(1)
	}

	cfg, _ := common.load()
	cards := loadCards(cfg)

	file, err := os.Open(fs.Arg(0))
	if err != nil {
		log.Fatalf("Error opening decklist: %v", err)
	}
	defer file.Close()

	names, err := deckexport.ParseDecklist(file)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	edges, err := deckexport.CountEdges(names, cards)
	if err != nil {
		log.Fatalf("Error counting edges: %v", err)
	}
	fmt.Printf("Num edges: %d\n", edges)
}

func runMigrationCommand(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", "", "Database path (overrides config)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}
	if fs.NArg() < 1 {
		printMigrationUsage()
		os.Exit(1)
	}

	cfg, _ := common.load()
	path := cfg.Storage.Path
	if *dbPath != "" {
		path = *dbPath
	}
	if path == "" || path == storage.MemoryPath {
		log.Fatalf("A database file is required: set [storage] path or pass -db")
	}

	// Open once so the database directory exists.
	db, err := storage.Open(storage.DefaultConfig(path))
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	_ = db.Close()

	mgr, err := storage.NewMigrationManager(path)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch fs.Arg(0) {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Steps(-1); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
	case "status", "version":
	case "force":
		if fs.NArg() < 2 {
			log.Fatalf("Usage: cube-drafter migrate force <version>")
		}
		version, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			log.Fatalf("Invalid version %q: %v", fs.Arg(1), err)
		}
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
	default:
		printMigrationUsage()
		os.Exit(1)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
}

func printMigrationUsage() {
	fmt.Println("Usage: cube-drafter migrate [options] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              - Apply all pending migrations")
	fmt.Println("  down            - Roll back the last migration")
	fmt.Println("  status          - Show the current schema version")
	fmt.Println("  force <version> - Set the version without migrating (recovery only)")
}

func runWatchCommand(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	common := addCommonFlags(fs)
	logPath := fs.String("log", "draft-log.toml", "Draft log to watch")
	poll := fs.Duration("poll-interval", time.Second, "Backup polling interval")
	formatName := fs.String("format", string(deckexport.FormatCockatrice), "Deck format: cockatrice, arena")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg, lg := common.load()
	validate(cfg)
	format := parseFormat(*formatName)

	opts := cfg.DeckbuildOptions()
	opts.Logger = lg
	w, err := watch.New(watch.Config{
		LogPath:      *logPath,
		Cards:        loadCards(cfg),
		Deckbuild:    opts,
		PollInterval: *poll,
		Logger:       lg,
		OnUpdate: func(u *watch.Update) {
			fmt.Printf("=== %s: %d drafters ===\n\n", u.Timestamp.Format(time.TimeOnly), len(u.Decks))
			for _, deck := range u.Decks {
				if deck.Err != nil {
					fmt.Printf("--- Seat %d ---\n%v\n\n", deck.Seat, deck.Err)
					continue
				}
				printDeck(deck.Seat, deck.Build, deck.Pool, format)
			}
		},
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Error watching draft log: %v", err)
	}
}
