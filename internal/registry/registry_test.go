package registry

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/events"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

const testCID = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"

func newTestRegistry(t *testing.T) (*Registry, store.Store) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, nil), s
}

func newKeypair(t *testing.T) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func newAsset(t *testing.T) crypto.Address {
	t.Helper()
	a, err := crypto.NewRandomAddress()
	if err != nil {
		t.Fatalf("NewRandomAddress: %v", err)
	}
	return a
}

func sampleMetadata() Metadata {
	return Metadata{
		Name:      "Sunset #1",
		Symbol:    "SUN",
		URI:       "https://example.com/sunset/1.json",
		ContentID: testCID,
	}
}

func create(r *Registry, kp *crypto.Keypair, nonce uint64, asset crypto.Address, m Metadata) (*store.AssetRecord, error) {
	cred := auth.Sign(kp, CreatePayload(kp.Identity(), asset, m), nonce)
	return r.Create(context.Background(), cred, asset, m)
}

func update(r *Registry, kp *crypto.Keypair, nonce uint64, asset crypto.Address, c Changes) (*store.AssetRecord, error) {
	cred := auth.Sign(kp, UpdatePayload(kp.Identity(), asset, c), nonce)
	return r.Update(context.Background(), cred, asset, c)
}

func TestCreate(t *testing.T) {
	r, s := newTestRegistry(t)
	creator := newKeypair(t)
	asset := newAsset(t)

	rec, err := create(r, creator, 1, asset, sampleMetadata())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Creator != creator.Identity() {
		t.Errorf("Creator = %s, want %s", rec.Creator, creator.Identity())
	}

	got, err := r.Get(context.Background(), asset)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Sunset #1" || got.ContentID != testCID {
		t.Errorf("Get = %+v", got)
	}

	if err := s.View(func(tx store.Tx) error {
		owner, err := tx.AssetOwner(asset)
		if err != nil {
			return err
		}
		if owner != store.UserAccount(creator.Identity()) {
			t.Errorf("owner = %s, want creator", owner)
		}

		evs, err := tx.ListEvents(0, 0)
		if err != nil {
			return err
		}
		if len(evs) != 1 || evs[0].Type != events.TypeAssetCreated {
			t.Fatalf("events = %+v, want one asset.created", evs)
		}
		var data AssetEvent
		if err := json.Unmarshal(evs[0].Data, &data); err != nil {
			return err
		}
		if data.Asset != asset || data.Symbol != "SUN" {
			t.Errorf("event data = %+v", data)
		}
		return nil
	}); err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestCreate_Twice(t *testing.T) {
	r, _ := newTestRegistry(t)
	creator := newKeypair(t)
	asset := newAsset(t)

	if _, err := create(r, creator, 1, asset, sampleMetadata()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := create(r, newKeypair(t), 1, asset, sampleMetadata()); !errors.Is(err, ErrAssetExists) {
		t.Fatalf("Create twice = %v, want ErrAssetExists", err)
	}
}

func TestCreate_InvalidMetadata(t *testing.T) {
	r, _ := newTestRegistry(t)
	creator := newKeypair(t)

	tests := []struct {
		name   string
		mutate func(m *Metadata)
	}{
		{"empty name", func(m *Metadata) { m.Name = "" }},
		{"long symbol", func(m *Metadata) { m.Symbol = "ABCDEFGHIJK" }},
		{"relative uri", func(m *Metadata) { m.URI = "sunset.json" }},
		{"bad cid", func(m *Metadata) { m.ContentID = "not-a-cid" }},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleMetadata()
			tt.mutate(&m)
			if _, err := create(r, creator, uint64(i+1), newAsset(t), m); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Create = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreate_BadSignature(t *testing.T) {
	r, _ := newTestRegistry(t)
	creator := newKeypair(t)
	asset := newAsset(t)
	m := sampleMetadata()

	cred := auth.Sign(creator, CreatePayload(creator.Identity(), asset, m), 1)
	m.Name = "Tampered"
	if _, err := r.Create(context.Background(), cred, asset, m); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("Create(tampered) = %v, want ErrInvalidSignature", err)
	}
	if _, err := r.Get(context.Background(), asset); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("Get after failed create = %v, want ErrAssetNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	r, _ := newTestRegistry(t)
	creator := newKeypair(t)
	asset := newAsset(t)

	if _, err := create(r, creator, 1, asset, sampleMetadata()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	newURI := "ipfs://" + testCID
	rec, err := update(r, creator, 2, asset, Changes{URI: &newURI})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.URI != newURI {
		t.Errorf("URI = %q, want %q", rec.URI, newURI)
	}
	if rec.Name != "Sunset #1" {
		t.Errorf("Name changed to %q", rec.Name)
	}
	if rec.UpdatedAt.Before(rec.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", rec.UpdatedAt, rec.CreatedAt)
	}

	empty := ""
	if _, err := update(r, creator, 3, asset, Changes{Name: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Update(empty name) = %v, want ErrInvalidInput", err)
	}
	if _, err := update(r, creator, 4, asset, Changes{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Update(no fields) = %v, want ErrInvalidInput", err)
	}
}

func TestUpdate_NotCreator(t *testing.T) {
	r, _ := newTestRegistry(t)
	creator, other := newKeypair(t), newKeypair(t)
	asset := newAsset(t)

	if _, err := create(r, creator, 1, asset, sampleMetadata()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Stolen"
	if _, err := update(r, other, 1, asset, Changes{Name: &name}); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("Update by other = %v, want ErrNotCreator", err)
	}
	if _, err := update(r, creator, 2, newAsset(t), Changes{Name: &name}); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("Update(unknown) = %v, want ErrAssetNotFound", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrAssetNotFound, "not_found"},
		{ErrNotCreator, "unauthorized"},
		{errors.New("x"), "internal"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
