package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ramonehamilton/cube-drafter/internal/config"
	"github.com/ramonehamilton/cube-drafter/internal/cube"
	"github.com/ramonehamilton/cube-drafter/internal/logger"
	"github.com/ramonehamilton/cube-drafter/internal/picker"
	"github.com/ramonehamilton/cube-drafter/internal/storage"
	"github.com/ramonehamilton/cube-drafter/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "draft":
		runDraftCommand(args)
	case "build":
		runBuildCommand(args)
	case "trials":
		runTrialsCommand(args)
	case "edges":
		runEdgesCommand(args)
	case "migrate":
		runMigrationCommand(args)
	case "watch":
		runWatchCommand(args)
	case "runs":
		runRunsCommand(args)
	case "backup":
		runBackupCommand(args)
	case "version", "-version", "--version":
		fmt.Println(version.String())
	case "help", "-h", "-help", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Cube Drafter")
	fmt.Println("============")
	fmt.Println()
	fmt.Println("Usage: cube-drafter <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  draft      - Simulate one draft, write its log and print every seat's deck")
	fmt.Println("  build      - Build decks from a draft log")
	fmt.Println("  trials     - Run many drafts and summarize deck synergy and power")
	fmt.Println("  edges      - Count synergy edges in a decklist")
	fmt.Println("  migrate    - Manage the trial results database schema")
	fmt.Println("  watch      - Rebuild decks whenever a draft log changes")
	fmt.Println("  runs       - List, show or delete stored trial runs")
	fmt.Println("  backup     - Back up the trial results database")
	fmt.Println("  version    - Print the version")
	fmt.Println()
	fmt.Println("Common options:")
	fmt.Println("  -config <path>   Configuration file (default ~/.cube-drafter/config.toml)")
	fmt.Println("  -debug-mode, -d  Enable debug logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cube-drafter draft -card-data cube.toml -strategy greedy-synergy -out draft-log.toml")
	fmt.Println("  cube-drafter build -log draft-log.toml -format arena")
	fmt.Println("  cube-drafter trials -n 100 -workers 8 -dir output")
	fmt.Println("  cube-drafter edges deck.txt")
	fmt.Println("  cube-drafter migrate up")
	fmt.Println("  cube-drafter runs show <run-id>")
	fmt.Println()
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configPath *string
	debugMode  *bool
	debugShort *bool
	cardData   *string
	fixerData  *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", "", "Path to configuration file"),
		debugMode:  fs.Bool("debug-mode", false, "Enable verbose debug logging"),
		debugShort: fs.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)"),
		cardData:   fs.String("card-data", "", "Cube card data TOML file (overrides config)"),
		fixerData:  fs.String("fixer-data", "", "Fixer data TOML file (overrides config)"),
	}
}

// load reads the configuration and applies flag overrides.
func (c *commonFlags) load() (*config.Config, *logger.Logger) {
	path := *c.configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			log.Fatalf("Error locating config: %v", err)
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *c.debugMode || *c.debugShort {
		cfg.App.DebugMode = true
	}
	if *c.cardData != "" {
		cfg.Cube.CardData = *c.cardData
	}
	if *c.fixerData != "" {
		cfg.Cube.FixerData = *c.fixerData
	}
	return cfg, logger.New(cfg.App.DebugMode)
}

func validate(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
}

func loadCards(cfg *config.Config) []*cube.Card {
	cards, err := cube.LoadCube(cfg.Cube.CardData, cfg.Cube.FixerData)
	if err != nil {
		log.Fatalf("Error loading cube: %v", err)
	}
	return cards
}

func newFactory(cfg *config.Config, cards []*cube.Card, lg *logger.Logger) *picker.Factory {
	strategy, err := picker.ParseStrategy(cfg.Picker.Strategy)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	factory, err := picker.NewFactory(cards,
		picker.WithStrategy(strategy),
		picker.WithWeights(cfg.PickerWeights()),
		picker.WithLogger(lg),
	)
	if err != nil {
		log.Fatalf("Error preparing pickers: %v", err)
	}
	lg.Debug("Pickers ready: strategy %s, common neighbors for %d cards, centrality for %d cards",
		factory.Strategy(), factory.CommonNeighbors().Len(), len(factory.Centralities()))
	return factory
}

// seed returns the configured seed, or one from the clock when unset.
func seed(cfg *config.Config) int64 {
	if cfg.Draft.Seed != 0 {
		return cfg.Draft.Seed
	}
	return time.Now().UnixNano()
}

// openStore opens the results database, or returns nil when persistence is
// not configured.
func openStore(cfg *config.Config) *storage.Service {
	if cfg.Storage.Path == "" {
		return nil
	}
	dbConfig := storage.DefaultConfig(cfg.Storage.Path)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	return storage.NewService(db)
}
