package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dfcamargo/extracto-pipeline/internal/async"
	"github.com/dfcamargo/extracto-pipeline/internal/config"
	"github.com/dfcamargo/extracto-pipeline/internal/creds"
	"github.com/dfcamargo/extracto-pipeline/internal/event"
	"github.com/dfcamargo/extracto-pipeline/internal/extract"
	"github.com/dfcamargo/extracto-pipeline/internal/ingest"
	"github.com/dfcamargo/extracto-pipeline/internal/persist"
	"github.com/dfcamargo/extracto-pipeline/internal/pipeline"
	"github.com/dfcamargo/extracto-pipeline/internal/repository"
	"github.com/dfcamargo/extracto-pipeline/internal/status"
	"github.com/dfcamargo/extracto-pipeline/internal/storage"
)

type service struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	proc *pipeline.Processor
}

var (
	svcOnce sync.Once
	svc     *service
	svcErr  error
)

func init() {
	functions.CloudEvent("ProcessStatement", handleEvent)
}

// handleEvent is the queue-delivery entrypoint in cloud mode. Returning an
// error asks the platform to redeliver with backoff; that is the only
// retry mechanism the pipeline relies on.
func handleEvent(ctx context.Context, e cloudevents.Event) error {
	s, err := getService(ctx)
	if err != nil {
		return err
	}

	n, err := event.FromCloudEvent(e)
	if err != nil {
		// A malformed envelope cannot improve on redelivery.
		slog.Error("dropping malformed delivery", "event_id", e.ID(), "error", err)
		return nil
	}
	return s.proc.Process(ctx, n)
}

func getService(ctx context.Context) (*service, error) {
	svcOnce.Do(func() {
		svc, svcErr = buildService(ctx, nil)
	})
	return svc, svcErr
}

// buildService wires the pipeline. A nil objects store means cloud mode
// (GCS); local mode passes its in-memory store.
func buildService(ctx context.Context, objects storage.ObjectStore) (*service, error) {
	logger := slog.Default()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout); err != nil {
		return nil, fmt.Errorf("db health: %w", err)
	}

	if objects == nil {
		gcs, err := storage.NewGCSStore(ctx, logger)
		if err != nil {
			return nil, err
		}
		objects = gcs
	}

	docs := repository.NewDocumentRepository(pool, logger)
	txs := repository.NewTransactionRepository(pool, logger)
	credentials := repository.NewCredentialRepository(pool, logger)

	proc := &pipeline.Processor{
		Logger:    logger,
		Objects:   objects,
		Tracker:   status.NewTracker(docs, logger),
		Creds:     creds.NewResolver(credentials, logger),
		Extractor: extract.NewEngine(cfg.Tools, logger),
		Saver:     persist.NewStore(txs, logger),
		KeyPrefix: cfg.Storage.KeyPrefix,
	}
	return &service{cfg: cfg, pool: pool, proc: proc}, nil
}

func main() {
	local := flag.Bool("local", false, "watch local directories instead of serving CloudEvents")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if *local {
		if err := runLocal(); err != nil {
			slog.Error("local mode failed", "error", err)
			os.Exit(1)
		}
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework start failed", "error", err)
		os.Exit(1)
	}
}

// runLocal wires the same pipeline against an in-memory object store and a
// directory watcher, so the whole flow runs on one machine for development.
func runLocal() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	objects := storage.NewMemoryStore()

	s, err := buildService(ctx, objects)
	if err != nil {
		return err
	}
	defer s.pool.Close()

	cfg := s.cfg
	if len(cfg.Ingest.Roots) == 0 {
		return fmt.Errorf("WATCH_ROOTS is required in local mode")
	}
	if cfg.Ingest.OwnerID == "" {
		return fmt.Errorf("INGEST_OWNER_ID is required in local mode")
	}

	queue := async.NewProcessorQueue(s.proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
	)

	uploader := &ingest.Uploader{
		Objects:      objects,
		Docs:         repository.NewDocumentRepository(s.pool, logger),
		Logger:       logger,
		Bucket:       "local",
		KeyPrefix:    cfg.Storage.KeyPrefix,
		OwnerID:      cfg.Ingest.OwnerID,
		DocumentType: cfg.Ingest.DocumentType,
	}

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Ingest.Roots,
		InitialScan: true,
		Debounce:    cfg.Ingest.Debounce,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("watching for statements", "roots", cfg.Ingest.Roots)
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
			return nil
		case err, ok := <-errs:
			if ok {
				logger.Error("watcher error", "error", err)
			}
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			res, err := uploader.Upload(ctx, path)
			if err != nil {
				logger.Error("upload failed", "path", path, "error", err)
				continue
			}
			_ = queue.Enqueue(ctx, async.NewJob(res.Notification))
		}
	}
}
