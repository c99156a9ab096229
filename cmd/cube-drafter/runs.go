package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ramonehamilton/cube-drafter/internal/storage"
	"github.com/ramonehamilton/cube-drafter/internal/storage/repository"
)

// requireStore opens the results database or exits when none is configured.
// It also returns the database path.
func requireStore(common *commonFlags, dbPath string) (*storage.Service, string) {
	cfg, _ := common.load()
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	service := openStore(cfg)
	if service == nil {
		log.Fatalf("No results database: set [storage] path or pass -db")
	}
	return service, cfg.Storage.Path
}

func runRunsCommand(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", "", "Database path (overrides config)")
	limit := fs.Int("limit", 20, "Maximum runs to list")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	command := "list"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}
	if command != "list" && fs.NArg() < 2 {
		fmt.Println("Usage: cube-drafter runs [options] list | show <run-id> | delete <run-id>")
		os.Exit(1)
	}

	service, _ := requireStore(common, *dbPath)
	defer service.Close()
	ctx := context.Background()

	switch command {
	case "list":
		runs, err := service.ListRuns(ctx, *limit)
		if err != nil {
			log.Fatalf("Error listing runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No trial runs stored.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSTRATEGY\tTABLE\tTRIALS\tSEED")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%dx%dx%d\t%d\t%d\n",
				run.ID, run.CreatedAt.Local().Format(time.DateTime), run.Strategy,
				run.Seats, run.Phases, run.CardsPerPack, run.Trials, run.Seed)
		}
		_ = w.Flush()

	case "show":
		id := fs.Arg(1)
		run, decks, err := service.GetRun(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			log.Fatalf("Run %s not found", id)
		}
		if err != nil {
			log.Fatalf("Error loading run: %v", err)
		}
		summary, err := service.Summarize(ctx, id)
		if err != nil {
			log.Fatalf("Error summarizing run: %v", err)
		}

		fmt.Printf("Run:      %s\n", run.ID)
		fmt.Printf("Strategy: %s (seed %d)\n", run.Strategy, run.Seed)
		fmt.Printf("Decks:    %d over %d trials\n", summary.Decks, run.Trials)
		fmt.Printf("Edges:    mean %.2f, max %d\n", summary.MeanEdges, summary.MaxEdges)
		fmt.Printf("Power:    mean %.3f\n", summary.MeanAvgPower)
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TRIAL\tSEAT\tCOLORS\tEDGES\tPOWER\tNONLANDS")
		for _, deck := range decks {
			colors := deck.MainColors
			if deck.SplashColors != "" {
				colors += "+" + strings.ToLower(deck.SplashColors)
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%.3f\t%d\n",
				deck.Trial, deck.Seat, colors, deck.Edges, deck.AvgPower, deck.Nonlands)
		}
		_ = w.Flush()

	case "delete":
		if err := service.DeleteRun(ctx, fs.Arg(1)); err != nil {
			log.Fatalf("Error deleting run: %v", err)
		}
		fmt.Printf("Deleted run %s\n", fs.Arg(1))

	default:
		fmt.Printf("Unknown runs command: %s\n", command)
		os.Exit(1)
	}
}

func runBackupCommand(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	common := addCommonFlags(fs)
	dbPath := fs.String("db", "", "Database path (overrides config)")
	dir := fs.String("dir", "", "Backup directory (default: backups next to the database)")
	list := fs.Bool("list", false, "List existing backups instead of creating one")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	service, path := requireStore(common, *dbPath)
	defer service.Close()

	if *list {
		backupDir := *dir
		if backupDir == "" {
			backupDir = storage.BackupDir(path)
		}
		backups, err := storage.ListBackups(backupDir)
		if err != nil {
			log.Fatalf("Error listing backups: %v", err)
		}
		for _, b := range backups {
			sum := b.Checksum
			if len(sum) > 12 {
				sum = sum[:12]
			}
			fmt.Printf("%s  %-12s  %8d bytes  %s\n", b.ModTime.Local().Format(time.DateTime), sum, b.Size, b.Path)
		}
		return
	}

	path, err := service.Backup(context.Background(), *dir)
	if err != nil {
		log.Fatalf("Error backing up database: %v", err)
	}
	fmt.Printf("Backup written to %s\n", path)
}
