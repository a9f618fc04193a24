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

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog/source"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/redis"
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
	slog.Info("starting facet search service",
		"port", cfg.Server.Port,
		"catalog_source", cfg.Catalog.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, nil)
		defer shutdownMetrics(context.Background())
	}

	src, err := source.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open catalog source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	engine := indexer.NewEngine(m)
	go func() {
		if err := engine.Build(ctx, src.Domain, src.Loader); err != nil {
			slog.Error("catalog build failed", "error", err)
		}
	}()

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Search.CacheEnabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	var tracker handler.EventTracker
	var collector *analytics.Collector
	var aggregator *analytics.Aggregator
	var consumerDone chan struct{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000, cfg.Kafka.BatchSize, cfg.Kafka.FlushInterval)
		// Outlives the server: Close flushes after handlers drain.
		collector.Start(context.WithoutCancel(ctx))
		tracker = collector

		aggregator = analytics.NewAggregator()
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
		consumerDone = make(chan struct{})
		go func() {
			defer close(consumerDone)
			defer consumer.Close()
			if err := consumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		slog.Info("search analytics enabled", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}

	checker := health.NewChecker(cfg.Search.ReadyTimeout)
	checker.Register("catalog", func(ctx context.Context) health.ComponentHealth {
		if !engine.Ready() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "catalog not built"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("built at %s", engine.BuiltAt().Format(time.RFC3339)),
		}
	})
	if redisClient != nil {
		checker.RegisterOptional("redis", health.PingCheck(redisClient.Ping))
	}
	if src.Store != nil {
		checker.Register("postgres", health.PingCheck(src.Ping))
	}

	exec := executor.New(engine, m).WithReadyTimeout(cfg.Search.ReadyTimeout)
	h := handler.New(exec, queryCache, tracker, m)
	analyticsH := analytics.NewHandler(aggregator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/facets", h.Facets)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("facet search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone

	if collector != nil {
		collector.Close()
	}
	if consumerDone != nil {
		<-consumerDone
	}
	slog.Info("facet search service stopped")
}
