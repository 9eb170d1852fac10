package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Snapshot is a point-in-time view of vault state used for gauges.
type Snapshot struct {
	ActiveLocks  int
	FeeBalance   uint64
	EventLogHead uint64
}

// SnapshotFunc reads the current vault state.
type SnapshotFunc func(ctx context.Context) (Snapshot, error)

// StartCollector starts a background loop that periodically updates gauges.
// pool may be nil when no index database is configured. It returns when ctx
// is cancelled.
func StartCollector(ctx context.Context, snapshot SnapshotFunc, pool *pgxpool.Pool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on startup
	collect(ctx, snapshot, pool)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collect(ctx, snapshot, pool)
		}
	}
}

func collect(ctx context.Context, snapshot SnapshotFunc, pool *pgxpool.Pool) {
	if pool != nil {
		collectDatabaseStats(pool)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	snap, err := snapshot(ctx)
	if err != nil {
		slog.Debug("failed to read vault snapshot for metrics", "error", err)
		return
	}
	Observe(snap)
}

// Observe sets the vault gauges from snap.
func Observe(snap Snapshot) {
	ActiveLocks.Set(float64(snap.ActiveLocks))
	FeeBalance.Set(float64(snap.FeeBalance))
	EventLogHead.Set(float64(snap.EventLogHead))
}

// collectDatabaseStats updates database connection pool metrics.
func collectDatabaseStats(pool *pgxpool.Pool) {
	stats := pool.Stat()

	DatabaseConnections.WithLabelValues("in_use").Set(float64(stats.AcquiredConns()))
	DatabaseConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
	DatabaseConnections.WithLabelValues("max_open").Set(float64(stats.MaxConns()))
}
