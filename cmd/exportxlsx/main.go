// Command exportxlsx writes an owner's persisted transactions to an XLSX
// workbook.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dfcamargo/extracto-pipeline/internal/config"
	"github.com/dfcamargo/extracto-pipeline/internal/export"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
)

func main() {
	owner := flag.String("owner", "", "owner id to export (required)")
	from := flag.String("from", "", "start date, YYYY-MM-DD")
	to := flag.String("to", "", "end date, YYYY-MM-DD")
	out := flag.String("out", "transactions.xlsx", "output path")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	logger := slog.Default()

	if *owner == "" {
		logger.Error("-owner is required")
		os.Exit(2)
	}

	var fromT, toT *time.Time
	if *from != "" {
		t, err := time.ParseInLocation("2006-01-02", *from, time.UTC)
		if err != nil {
			logger.Error("bad -from date", "error", err)
			os.Exit(2)
		}
		fromT = &t
	}
	if *to != "" {
		t, err := time.ParseInLocation("2006-01-02", *to, time.UTC)
		if err != nil {
			logger.Error("bad -to date", "error", err)
			os.Exit(2)
		}
		toT = &t
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.Load()
	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening DB", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := export.NewService(repository.NewTransactionRepository(pool, logger), logger)
	data, err := svc.ExportXLSX(ctx, *owner, fromT, toT)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write failed", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(data))
}
