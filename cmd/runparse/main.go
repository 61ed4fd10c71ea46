// Command runparse extracts and parses a single local PDF, printing the
// transactions it finds as JSON. Nothing touches the database, which makes
// it the quickest way to check how a new statement layout parses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dfcamargo/extracto-pipeline/internal/config"
	"github.com/dfcamargo/extracto-pipeline/internal/extract"
	"github.com/dfcamargo/extracto-pipeline/internal/parse"
)

func main() {
	owner := flag.String("owner", "local", "owner id to stamp on parsed transactions")
	password := flag.String("password", "", "decryption password, if the PDF is encrypted")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if flag.NArg() != 1 {
		slog.Error("usage: runparse [flags] <statement.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read failed", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	engine := extract.NewEngine(config.Load().Tools, nil)
	text, err := engine.Extract(ctx, data, *password)
	if err != nil {
		slog.Error("extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	txs, err := parse.Parse(text, parse.Context{OwnerID: *owner, DocumentID: "runparse"})
	if err != nil {
		slog.Error("parse failed", "path", path, "error", err)
		os.Exit(1)
	}

	slog.Info("parsed", "path", path, "transactions", len(txs))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		slog.Error("encode failed", "error", err)
		os.Exit(1)
	}
}
