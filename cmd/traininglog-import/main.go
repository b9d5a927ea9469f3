package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MWood1988/TrainingLog/internal/config"
	"github.com/MWood1988/TrainingLog/internal/ingest/csvlog"
	"github.com/MWood1988/TrainingLog/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to CSV file (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing the snapshot")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: traininglog-import -config config.yaml -file export.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := store.RunMigrations(cfg.Database.Path); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if *dryRun {
		log.Info("DRY RUN mode — the snapshot will not be written")
		st.Detach()
	}

	// An unreadable file fails the whole import before parsing; the
	// store is untouched.
	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("cannot open CSV file", "file", *filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	startedAt := time.Now()
	result, err := csvlog.NewProvider(st, log).Ingest(context.Background(), f)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	if !*dryRun {
		if _, err := st.InsertImportLog(store.ImportLog{
			Source:           "cli",
			Status:           "success",
			RowsImported:     result.RowsImported,
			RowsSkipped:      result.RowsSkipped,
			SessionsAffected: result.SessionsAffected,
			DurationMs:       int(time.Since(startedAt).Milliseconds()),
		}); err != nil {
			log.Warn("recording import log failed", "error", err)
		}
	}

	log.Info("import complete",
		"rows_imported", result.RowsImported,
		"rows_skipped", result.RowsSkipped,
		"sessions_affected", result.SessionsAffected,
	)
}
