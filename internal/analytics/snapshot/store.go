// Package snapshot persists periodic copies of the search analytics
// aggregate in PostgreSQL so trends survive restarts of the analytics
// service.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS analytics_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	data        JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL
)`

// finalSaveTimeout bounds the snapshot written after the run context ends.
const finalSaveTimeout = 5 * time.Second

type Snapshot struct {
	CapturedAt time.Time                 `json:"captured_at"`
	Stats      analytics.AggregatedStats `json:"stats"`
}

type Store struct {
	client *postgres.Client
	logger *slog.Logger
}

func New(client *postgres.Client) *Store {
	return &Store{
		client: client,
		logger: slog.Default().With("component", "analytics-snapshot"),
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating analytics_snapshots table: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap.Stats)
	if err != nil {
		return fmt.Errorf("marshaling analytics snapshot: %w", err)
	}
	_, err = s.client.DB.ExecContext(ctx,
		`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
		data, snap.CapturedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot saved", "total_searches", snap.Stats.TotalSearches)
	return nil
}

// Latest returns the newest snapshot, or nil when none has been saved.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	snaps, err := s.List(ctx, 1)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// List returns up to limit snapshots, newest first. Rows that no longer
// decode are skipped.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT data, captured_at FROM analytics_snapshots ORDER BY captured_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing analytics snapshots: %w", err)
	}
	defer rows.Close()

	snaps := make([]Snapshot, 0, limit)
	for rows.Next() {
		var (
			data []byte
			snap Snapshot
		)
		if err := rows.Scan(&data, &snap.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning analytics snapshot: %w", err)
		}
		if err := json.Unmarshal(data, &snap.Stats); err != nil {
			s.logger.Warn("skipping corrupt analytics snapshot", "error", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analytics snapshots: %w", err)
	}
	return snaps, nil
}

// Run saves a snapshot of agg every interval until ctx is done, then saves
// one last snapshot.
func (s *Store) Run(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	s.logger.Info("periodic analytics snapshots started", "interval", interval)
	runLoop(ctx, interval, agg.Stats, s.Save, s.logger)
}

func runLoop(
	ctx context.Context,
	interval time.Duration,
	stats func() analytics.AggregatedStats,
	save func(context.Context, Snapshot) error,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if err := save(ctx, Snapshot{CapturedAt: now, Stats: stats()}); err != nil {
				logger.Error("analytics snapshot failed", "error", err)
			}
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
			err := save(finalCtx, Snapshot{CapturedAt: time.Now(), Stats: stats()})
			cancel()
			if err != nil {
				logger.Error("final analytics snapshot failed", "error", err)
			}
			return
		}
	}
}
