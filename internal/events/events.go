// Package events records committed state changes in the store's append-only
// log and fans them out to external observers after commit.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

// Event types.
const (
	TypeVaultInitialized = "vault.initialized"
	TypeAssetLocked      = "asset.locked"
	TypeAssetUnlocked    = "asset.unlocked"
	TypeFeesWithdrawn    = "fees.withdrawn"
	TypeAssetCreated     = "asset.created"
	TypeAssetUpdated     = "asset.updated"
	TypeFundsDeposited   = "funds.deposited"
)

// Recorder appends events inside one store transaction and remembers them
// so they can be published once the transaction commits.
type Recorder struct {
	tx     store.Tx
	at     time.Time
	events []*store.Event
}

// NewRecorder returns a recorder stamping events with at.
func NewRecorder(tx store.Tx, at time.Time) *Recorder {
	return &Recorder{tx: tx, at: at}
}

// Record appends an event of type typ carrying data.
func (r *Recorder) Record(typ string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", typ, err)
	}
	ev := &store.Event{
		Type:      typ,
		Timestamp: r.at,
		Data:      raw,
	}
	if err := r.tx.AppendEvent(ev); err != nil {
		return fmt.Errorf("append %s event: %w", typ, err)
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns the events recorded so far.
func (r *Recorder) Events() []*store.Event {
	return r.events
}

// Publisher delivers committed events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, events []*store.Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, []*store.Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
