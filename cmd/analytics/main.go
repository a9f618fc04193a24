// Command analytics runs facet-search analytics on its own: it consumes the
// search events published by the searcher, serves the aggregated view at
// GET /api/v1/analytics and, when Postgres is reachable, snapshots it
// periodically for GET /api/v1/analytics/history.
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
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/analytics/snapshot"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	port := flag.Int("port", 8081, "HTTP port for the analytics API")
	group := flag.String("group", "facet-analytics", "Kafka consumer group")
	snapshotEvery := flag.Duration("snapshot-interval", 5*time.Minute, "how often to persist analytics to Postgres (0 disables)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.Kafka.Enabled {
		slog.Error("analytics service needs kafka.enabled")
		os.Exit(1)
	}
	cfg.Kafka.ConsumerGroup = *group
	slog.Info("starting analytics service",
		"port", *port,
		"topic", cfg.Kafka.Topics.AnalyticsEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		defer consumer.Close()
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()

	var snapshots *snapshot.Store
	snapshotDone := make(chan struct{})
	if *snapshotEvery > 0 {
		snapshots = openSnapshots(ctx, cfg.Postgres)
	}
	if snapshots != nil {
		go func() {
			defer close(snapshotDone)
			snapshots.Run(ctx, aggregator, *snapshotEvery)
		}()
	} else {
		close(snapshotDone)
	}

	checker := health.NewChecker(0)
	checker.Register("consumer", func(ctx context.Context) health.ComponentHealth {
		select {
		case <-consumerDone:
			return health.ComponentHealth{Status: health.StatusDown, Message: "consumer stopped"}
		default:
			return health.ComponentHealth{Status: health.StatusUp}
		}
	})

	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analytics.NewHandler(aggregator).Stats)
	if snapshots != nil {
		mux.HandleFunc("GET /api/v1/analytics/history", snapshot.NewHandler(snapshots).History)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-consumerDone
	<-snapshotDone
	if snapshots != nil {
		snapshots.Close()
	}
	slog.Info("analytics service stopped")
}

// openSnapshots connects the snapshot store, or returns nil when Postgres is
// unavailable so the service runs without history.
func openSnapshots(ctx context.Context, cfg config.PostgresConfig) *snapshot.Store {
	db, err := postgres.New(ctx, cfg)
	if err != nil {
		slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
		return nil
	}
	store := snapshot.New(db)
	if err := store.Migrate(ctx); err != nil {
		slog.Warn("analytics snapshots disabled", "error", err)
		db.Close()
		return nil
	}
	return store
}
