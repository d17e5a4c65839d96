package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/docstruct/docstruct/internal/config"
	"github.com/docstruct/docstruct/internal/model"
	"github.com/docstruct/docstruct/internal/outline"
	"github.com/docstruct/docstruct/internal/pipeline"
)

// Batch mode: process every supported document in INPUT_DIR, writing one
// JSON outline record per document into OUTPUT_DIR.
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	models, err := model.Load(cfg.ModelDir)
	if err != nil {
		log.Error("failed to load model artifacts", "dir", cfg.ModelDir, "error", err)
		os.Exit(1)
	}

	writer, err := outline.NewWriter(cfg.OutputDir)
	if err != nil {
		log.Error("failed to prepare output dir", "dir", cfg.OutputDir, "error", err)
		os.Exit(1)
	}

	stats := pipeline.NewStats(cfg.StatsWindow)
	runner := pipeline.NewRunner(models, writer, log, stats, cfg.WorkerCount, cfg.DocTimeout)

	result, err := runner.Run(context.Background(), cfg.InputDir)
	if err != nil {
		log.Error("batch failed", "error", err)
		os.Exit(1)
	}

	snap := stats.Snapshot()
	log.Info("batch complete",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"fallbacks", result.Fallbacks,
		"failed", result.Failed,
		"p95_ms", snap.P95Ms,
	)
}
