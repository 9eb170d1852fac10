package indexer

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/assetvault/internal/config"
	"github.com/abdul-hamid-achik/assetvault/internal/database"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

// memSource serves a fixed, ordered event slice.
type memSource []*store.Event

func (m memSource) Events(_ context.Context, after uint64, limit int) ([]*store.Event, error) {
	var out []*store.Event
	for _, ev := range m {
		if ev.Seq <= after {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}

func newEvents(n int) memSource {
	evs := make(memSource, n)
	for i := range evs {
		evs[i] = &store.Event{
			Seq:       uint64(i + 1),
			ID:        uuid.New(),
			Type:      "asset.locked",
			Timestamp: time.Unix(int64(1_700_000_000+i), 0).UTC(),
			Data:      json.RawMessage(`{"n":1}`),
		}
	}
	return evs
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, &config.DatabaseConfig{URL: url, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	reset := func() {
		db.Pool.Exec(ctx, `TRUNCATE vault_events`)
		db.Pool.Exec(ctx, `DELETE FROM indexer_cursors WHERE name = $1`, cursorName)
	}
	reset()
	t.Cleanup(func() {
		reset()
		db.Close()
	})
	return db
}

func TestSync(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	src := newEvents(7)
	ix := New(db, src, 3)

	n, err := ix.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 7 {
		t.Errorf("Sync copied %d events, want 7", n)
	}

	cursor, err := ix.Cursor(ctx)
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	if cursor != 7 {
		t.Errorf("Cursor = %d, want 7", cursor)
	}

	n, err = ix.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if n != 0 {
		t.Errorf("second Sync copied %d events, want 0", n)
	}

	rows, err := ix.ByType(ctx, "asset.locked", 2)
	if err != nil {
		t.Fatalf("ByType: %v", err)
	}
	if len(rows) != 2 || rows[0].Seq != 7 {
		t.Errorf("ByType = %+v, want newest two", rows)
	}
}

func TestSync_EmptySource(t *testing.T) {
	db := newTestDB(t)
	n, err := New(db, memSource{}, 0).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 0 {
		t.Errorf("Sync copied %d events, want 0", n)
	}
}

func TestMemSource(t *testing.T) {
	src := newEvents(5)
	page, _ := src.Events(context.Background(), 2, 2)
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("page = %+v, want seqs 3,4", page)
	}
}
