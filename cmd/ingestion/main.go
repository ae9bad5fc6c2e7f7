// Command ingestion stores job listings in PostgreSQL and announces each
// stored batch on Kafka so running searchers rebuild their index.
//
// It serves POST /api/v1/listings (JSON batch, or the scraper CSV with
// Content-Type text/csv). With -csv it imports one file and exits.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml] [-csv data/job_data.csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	csvPath := flag.String("csv", "", "import this CSV file and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	store := catalog.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure listing schema", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to postgres")

	var pub *publisher.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CatalogUpdates)
		defer producer.Close()
		slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.CatalogUpdates)
		pub = publisher.New(store, producer)
	} else {
		slog.Warn("kafka disabled, searchers must be reloaded manually")
		pub = publisher.New(store, nil)
	}

	if *csvPath != "" {
		if err := importFile(ctx, pub, *csvPath); err != nil {
			slog.Error("csv import failed", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		return
	}

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(pub)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/listings", h.Import)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	m := metrics.New()
	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}

func importFile(ctx context.Context, pub *publisher.Publisher, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	resp, err := pub.ImportCSV(ctx, "csv:"+path, f)
	if err != nil {
		return err
	}
	slog.Info("csv imported",
		"batch_id", resp.BatchID,
		"inserted", resp.Inserted,
		"skipped", resp.Skipped,
		"rejected", len(resp.Rejected),
	)
	return nil
}
