// Package registry keeps descriptive metadata for assets: name, symbol,
// locator URI and content identifier. It shares only the asset identifier
// namespace with the vault and never calls it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/custody"
	"github.com/abdul-hamid-achik/assetvault/internal/events"
	"github.com/abdul-hamid-achik/assetvault/internal/logging"
	"github.com/abdul-hamid-achik/assetvault/internal/metrics"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
	"github.com/abdul-hamid-achik/assetvault/internal/validation"
)

var (
	// ErrAssetNotFound is returned when no record exists for the asset id.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrAssetExists is returned when creating a record that already exists.
	ErrAssetExists = errors.New("asset already exists")

	// ErrNotCreator is returned when someone other than the creator updates a record.
	ErrNotCreator = errors.New("only the creator may update the asset")

	// ErrInvalidSignature is returned when the credential does not verify.
	ErrInvalidSignature = errors.New("invalid credential")

	// ErrInvalidInput is returned when a metadata field fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Metadata is the descriptive part of an asset record.
type Metadata struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	URI       string `json:"uri"`
	ContentID string `json:"content_id"`
}

// Changes holds the fields an update replaces. Nil fields are kept.
type Changes struct {
	Name      *string `json:"name,omitempty"`
	Symbol    *string `json:"symbol,omitempty"`
	URI       *string `json:"uri,omitempty"`
	ContentID *string `json:"content_id,omitempty"`
}

// Empty reports whether the update changes nothing.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Symbol == nil && c.URI == nil && c.ContentID == nil
}

func (c Changes) apply(m *Metadata) {
	if c.Name != nil {
		m.Name = *c.Name
	}
	if c.Symbol != nil {
		m.Symbol = *c.Symbol
	}
	if c.URI != nil {
		m.URI = *c.URI
	}
	if c.ContentID != nil {
		m.ContentID = *c.ContentID
	}
}

// Validate checks every field of m.
func (m Metadata) Validate() error {
	checks := []struct {
		field string
		err   error
	}{
		{"name", validation.AssetName(m.Name)},
		{"symbol", validation.Symbol(m.Symbol)},
		{"uri", validation.URI(m.URI)},
		{"content_id", validation.ContentID(m.ContentID)},
	}
	for _, c := range checks {
		if c.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidInput, c.field, c.err)
		}
	}
	return nil
}

// AssetEvent is the data of asset.created and asset.updated events.
type AssetEvent struct {
	Asset   crypto.Address `json:"asset"`
	Creator crypto.Address `json:"creator"`
	Metadata
}

// Registry stores asset metadata records.
type Registry struct {
	store     store.Store
	publisher events.Publisher
	now       func() time.Time
}

// New returns a registry backed by s. publisher may be nil.
func New(s store.Store, publisher events.Publisher) *Registry {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Registry{store: s, publisher: publisher, now: time.Now}
}

// CreatePayload is the message a creator signs to register asset.
func CreatePayload(creator, asset crypto.Address, m Metadata) []byte {
	return fmt.Appendf(nil, "assetvault/v1:asset-create:%s:%s:%q:%q:%q:%q",
		creator, asset, m.Name, m.Symbol, m.URI, m.ContentID)
}

// UpdatePayload is the message the creator signs to change asset.
func UpdatePayload(creator, asset crypto.Address, c Changes) []byte {
	field := func(p *string) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%q", *p)
	}
	return fmt.Appendf(nil, "assetvault/v1:asset-update:%s:%s:%s:%s:%s:%s",
		creator, asset, field(c.Name), field(c.Symbol), field(c.URI), field(c.ContentID))
}

// Create records metadata for asset and places its single unit in the
// creator's custody account.
func (r *Registry) Create(ctx context.Context, cred auth.Credential, asset crypto.Address, m Metadata) (*store.AssetRecord, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	now := r.now().UTC()
	rec := &store.AssetRecord{
		ID:        asset,
		Creator:   cred.Identity,
		Name:      m.Name,
		Symbol:    m.Symbol,
		URI:       m.URI,
		ContentID: m.ContentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.update(ctx, "asset_create", now, func(tx store.Tx, evs *events.Recorder) error {
		if err := auth.Verify(tx, cred, CreatePayload(cred.Identity, asset, m)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		if err := tx.CreateAsset(rec); err != nil {
			return mapStoreError(err)
		}
		if err := custody.Issue(tx, asset, store.UserAccount(cred.Identity)); err != nil {
			if errors.Is(err, custody.ErrAlreadyIssued) {
				return ErrAssetExists
			}
			return err
		}
		return evs.Record(events.TypeAssetCreated, AssetEvent{Asset: asset, Creator: rec.Creator, Metadata: m})
	})
	if err != nil {
		return nil, err
	}

	logging.Logger(ctx).Info("asset_created", "asset", asset, "creator", rec.Creator, "symbol", rec.Symbol)
	return rec, nil
}

// Update replaces the given fields of asset's record. Only the creator may
// update a record.
func (r *Registry) Update(ctx context.Context, cred auth.Credential, asset crypto.Address, c Changes) (*store.AssetRecord, error) {
	if c.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	now := r.now().UTC()
	var rec *store.AssetRecord

	err := r.update(ctx, "asset_update", now, func(tx store.Tx, evs *events.Recorder) error {
		var err error
		rec, err = tx.GetAsset(asset)
		if err != nil {
			return mapStoreError(err)
		}
		if rec.Creator != cred.Identity {
			return ErrNotCreator
		}
		if err := auth.Verify(tx, cred, UpdatePayload(cred.Identity, asset, c)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}

		m := metadataOf(rec)
		c.apply(&m)
		if err := m.Validate(); err != nil {
			return err
		}
		rec.Name, rec.Symbol, rec.URI, rec.ContentID = m.Name, m.Symbol, m.URI, m.ContentID
		rec.UpdatedAt = now

		if err := tx.PutAsset(rec); err != nil {
			return err
		}
		return evs.Record(events.TypeAssetUpdated, AssetEvent{Asset: asset, Creator: rec.Creator, Metadata: m})
	})
	if err != nil {
		return nil, err
	}

	logging.Logger(ctx).Info("asset_updated", "asset", asset)
	return rec, nil
}

// Get returns the record for asset.
func (r *Registry) Get(ctx context.Context, asset crypto.Address) (*store.AssetRecord, error) {
	var rec *store.AssetRecord
	err := r.store.View(func(tx store.Tx) error {
		var err error
		rec, err = tx.GetAsset(asset)
		return err
	})
	return rec, mapStoreError(err)
}

func (r *Registry) update(ctx context.Context, op string, now time.Time, fn func(tx store.Tx, rec *events.Recorder) error) error {
	var rec *events.Recorder
	err := r.store.Update(func(tx store.Tx) error {
		rec = events.NewRecorder(tx, now)
		return fn(tx, rec)
	})
	metrics.Operations.WithLabelValues(op, Kind(err)).Inc()
	if err != nil {
		return err
	}
	if err := r.publisher.Publish(ctx, rec.Events()); err != nil {
		logging.Logger(ctx).Warn("event_publish_failed", "operation", op, "error", err)
	}
	return nil
}

func metadataOf(rec *store.AssetRecord) Metadata {
	return Metadata{Name: rec.Name, Symbol: rec.Symbol, URI: rec.URI, ContentID: rec.ContentID}
}

// Kind returns a stable, lower-case name for the error's kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAssetNotFound):
		return "not_found"
	case errors.Is(err, ErrAssetExists):
		return "already_exists"
	case errors.Is(err, ErrNotCreator), errors.Is(err, ErrInvalidSignature):
		return "unauthorized"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

// mapStoreError translates store-level sentinel errors to registry errors.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrAssetNotFound) {
		return ErrAssetNotFound
	}
	if errors.Is(err, store.ErrAssetExists) {
		return ErrAssetExists
	}
	return err
}
