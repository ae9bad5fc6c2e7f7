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
	"time"

	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/analytics/collector"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/locale"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/internal/searcher/synonym"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/job-search-engine/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "catalog_source", cfg.Catalog.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := locale.Load(cfg.Locale.Path)
	if err != nil {
		slog.Error("failed to load locale", "error", err)
		os.Exit(1)
	}
	normalizer := tokenizer.New(loc)
	m := metrics.New()

	var db *postgres.Client
	if cfg.Postgres.Enabled || cfg.Catalog.Source == "postgres" {
		db, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var source catalog.Source
	switch cfg.Catalog.Source {
	case "postgres":
		store := catalog.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure listing schema", "error", err)
			os.Exit(1)
		}
		source = store
	default:
		source = catalog.CSVSource{Path: cfg.Catalog.CSVPath}
	}

	engine := indexer.NewEngine(source, normalizer, cfg.Catalog, m)
	snap, err := engine.Reload(ctx)
	if err != nil {
		slog.Error("failed to build initial index", "source", source.Name(), "error", err)
		os.Exit(1)
	}
	slog.Info("index ready",
		"listings", snap.Catalog.Len(),
		"vocabulary", snap.Index.VocabularySize(),
		"build_ms", snap.BuildTime.Milliseconds(),
	)

	interpreter := parser.New(loc, normalizer, synonym.New(loc))
	exec := executor.New(engine, interpreter, suggest.New(cfg.Search.MaxSuggestions, suggest.DefaultCutoff), cfg.Search)

	var (
		queryCache  *cache.QueryCache
		redisClient *pkgredis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	deps := handler.Deps{
		Cache:   queryCache,
		Tracer:  tracing.NewTracer(cfg.Tracing),
		Metrics: m,
	}
	if cfg.Kafka.Enabled {
		analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer analyticsProducer.Close()
		events := collector.NewBatchCollector(analyticsProducer, 100, 5*time.Second)
		events.Start(ctx)
		defer events.Close()
		deps.Collector = events
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

		// Every replica must see every update, so each one consumes in its
		// own group.
		hostname, _ := os.Hostname()
		group := fmt.Sprintf("%s-searcher-%s", cfg.Kafka.ConsumerGroup, hostname)
		var invalidator consumer.CacheInvalidator
		if queryCache != nil {
			invalidator = queryCache
		}
		reloads := consumer.New(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CatalogUpdates, group,
			consumer.HandleMessage(engine, invalidator)))
		go func() {
			if err := reloads.Start(ctx); err != nil {
				slog.Error("reload consumer error", "error", err)
			}
		}()
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		snap, err := engine.Current()
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("generation %d, %d listings", snap.Generation, snap.Catalog.Len()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if queryCache.BreakerState() == resilience.StateOpen {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit open"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if db != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := db.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := handler.New(exec, engine, deps)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.JobDetail)
	mux.HandleFunc("GET /api/v1/admin/index", h.IndexStats)
	mux.HandleFunc("POST /api/v1/admin/reload", h.Reload)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.CORS(middleware.NewCORSConfig(cfg.Server.AllowOrigins))(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

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
		if shutdownMetrics != nil {
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
