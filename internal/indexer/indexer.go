// Package indexer copies the vault's committed event log into PostgreSQL so
// external observers can query it without touching the vault database.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/abdul-hamid-achik/assetvault/internal/database"
	"github.com/abdul-hamid-achik/assetvault/internal/logging"
	"github.com/abdul-hamid-achik/assetvault/internal/metrics"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

const (
	cursorName       = "vault_events"
	defaultBatchSize = 500
)

// Source reads committed events in sequence order.
type Source interface {
	Events(ctx context.Context, after uint64, limit int) ([]*store.Event, error)
}

// Indexer copies events from a Source into the index database.
type Indexer struct {
	db    *database.DB
	src   Source
	batch int
}

// New creates an indexer. batchSize <= 0 uses the default.
func New(db *database.DB, src Source, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Indexer{db: db, src: src, batch: batchSize}
}

// Cursor returns the sequence of the last indexed event.
func (ix *Indexer) Cursor(ctx context.Context) (uint64, error) {
	var last int64
	err := ix.db.Pool.QueryRow(ctx,
		`SELECT last_seq FROM indexer_cursors WHERE name = $1`, cursorName).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return uint64(last), nil
}

// Sync copies every event after the cursor and returns how many it copied.
// Each batch and its cursor advance commit together, so a crash never skips
// or duplicates events.
func (ix *Indexer) Sync(ctx context.Context) (int, error) {
	total := 0
	for {
		after, err := ix.Cursor(ctx)
		if err != nil {
			return total, err
		}

		evs, err := ix.src.Events(ctx, after, ix.batch)
		if err != nil {
			return total, fmt.Errorf("read events after %d: %w", after, err)
		}
		if len(evs) == 0 {
			return total, nil
		}

		if err := ix.db.Transaction(ctx, func(tx pgx.Tx) error {
			return writeBatch(ctx, tx, evs)
		}); err != nil {
			return total, err
		}

		total += len(evs)
		last := evs[len(evs)-1].Seq
		metrics.IndexerCursor.Set(float64(last))

		if len(evs) < ix.batch {
			return total, nil
		}
	}
}

func writeBatch(ctx context.Context, tx pgx.Tx, evs []*store.Event) error {
	batch := &pgx.Batch{}
	for _, ev := range evs {
		batch.Queue(`
			INSERT INTO vault_events (seq, id, type, occurred_at, data)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (seq) DO NOTHING`,
			int64(ev.Seq),
			pgtype.UUID{Bytes: ev.ID, Valid: true},
			ev.Type,
			ev.Timestamp,
			[]byte(ev.Data),
		)
	}
	batch.Queue(`
		INSERT INTO indexer_cursors (name, last_seq) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET last_seq = EXCLUDED.last_seq`,
		cursorName, int64(evs[len(evs)-1].Seq),
	)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write %d events: %w", len(evs), err)
	}
	return nil
}

// Run syncs every interval until ctx is cancelled.
func (ix *Indexer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := ix.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Logger(ctx).Error("event_index_sync_failed", "error", err)
		} else if n > 0 {
			logging.Logger(ctx).Debug("event_index_synced", "events", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// IndexedEvent is one row of the event index.
type IndexedEvent struct {
	Seq        uint64
	Type       string
	OccurredAt time.Time
	Data       []byte
}

// ByType returns up to limit indexed events of type typ, newest first.
func (ix *Indexer) ByType(ctx context.Context, typ string, limit int) ([]IndexedEvent, error) {
	rows, err := ix.db.Pool.Query(ctx, `
		SELECT seq, type, occurred_at, data FROM vault_events
		WHERE type = $1 ORDER BY seq DESC LIMIT $2`, typ, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (IndexedEvent, error) {
		var ev IndexedEvent
		var seq int64
		err := row.Scan(&seq, &ev.Type, &ev.OccurredAt, &ev.Data)
		ev.Seq = uint64(seq)
		return ev, err
	})
}
