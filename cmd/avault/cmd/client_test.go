package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/config"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/handlers"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

func newTestAPI(t *testing.T) *Client {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	v := vault.New(s, vault.WithFaucet(true))
	t.Cleanup(func() { v.Close() })

	router := handlers.NewRouter(&handlers.Dependencies{
		Config: &config.Config{
			Server:             config.ServerConfig{RequestTimeout: 10 * time.Second},
			Environment:        "development",
			MaxRequestBodySize: 1 << 20,
		},
		Vault:    v,
		Registry: registry.New(s, nil),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func mustKeypair(t *testing.T) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func TestClient_Flow(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()
	authority, depositor := mustKeypair(t), mustKeypair(t)
	rate := vault.DefaultFeeRatePerDay

	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats before init: %v", err)
	}
	if st.Initialized {
		t.Error("vault reported initialized before Initialize")
	}

	if _, err := c.Initialize(ctx, auth.Sign(authority, vault.InitializePayload(authority.Identity()), 1)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	_, err = c.Initialize(ctx, auth.Sign(authority, vault.InitializePayload(authority.Identity()), 2))
	if !errors.Is(err, vault.ErrAlreadyInitialized) {
		t.Errorf("second Initialize error = %v, want ErrAlreadyInitialized", err)
	}

	balance, err := c.Fund(ctx, depositor.Identity(), 3*rate)
	if err != nil {
		t.Fatalf("Fund: %v", err)
	}
	if balance != 3*rate {
		t.Errorf("balance = %d, want %d", balance, 3*rate)
	}

	asset, err := crypto.NewRandomAddress()
	if err != nil {
		t.Fatalf("NewRandomAddress: %v", err)
	}
	m := registry.Metadata{Name: "Deed 7", Symbol: "DEED", URI: "https://example.com/7.json"}
	rec, err := c.CreateAsset(ctx, auth.Sign(depositor, registry.CreatePayload(depositor.Identity(), asset, m), 1), asset, m)
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	if rec.Creator != depositor.Identity() || rec.Symbol != "DEED" {
		t.Errorf("asset record = %+v", rec)
	}

	lock, err := c.Lock(ctx, auth.Sign(depositor, vault.LockPayload(depositor.Identity(), asset, 0), 2), asset, 0)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if lock.Depositor != depositor.Identity() || lock.FeeRatePerDay != rate {
		t.Errorf("lock = %+v", lock)
	}

	q, err := c.Quote(ctx, depositor.Identity(), asset)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !q.Eligible || q.DaysHeld != 1 || q.Fee != rate {
		t.Errorf("quote = %+v, want eligible with one day charged", q)
	}

	receipt, err := c.Unlock(ctx, auth.Sign(depositor, vault.UnlockPayload(depositor.Identity(), asset, lock.LockTime), 3), depositor.Identity(), asset)
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if receipt.FeePaid != rate {
		t.Errorf("fee paid = %d, want %d", receipt.FeePaid, rate)
	}

	_, err = c.GetLock(ctx, depositor.Identity(), asset)
	if !errors.Is(err, vault.ErrLockNotFound) {
		t.Errorf("GetLock after unlock error = %v, want ErrLockNotFound", err)
	}

	info, err := c.Account(ctx, depositor.Identity())
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if info.Balance != 2*rate || len(info.Holdings) != 1 || info.Holdings[0] != asset {
		t.Errorf("account = %+v", info)
	}

	_, err = c.Withdraw(ctx, auth.Sign(depositor, vault.WithdrawPayload(depositor.Identity(), rate), 4), rate)
	if !errors.Is(err, vault.ErrUnauthorized) {
		t.Errorf("Withdraw by depositor error = %v, want ErrUnauthorized", err)
	}
	ledger, err := c.Withdraw(ctx, auth.Sign(authority, vault.WithdrawPayload(authority.Identity(), rate), 3), rate)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if ledger.TotalFeesCollected != 0 {
		t.Errorf("fees after withdraw = %d, want 0", ledger.TotalFeesCollected)
	}

	evs, err := c.Events(ctx, 0, 100)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(evs) == 0 || evs[0].Type != "vault.initialized" {
		t.Errorf("events = %+v", evs)
	}
}

func TestClient_AssetErrors(t *testing.T) {
	c := newTestAPI(t)
	ctx := context.Background()
	creator, other := mustKeypair(t), mustKeypair(t)

	asset, err := crypto.NewRandomAddress()
	if err != nil {
		t.Fatalf("NewRandomAddress: %v", err)
	}
	if _, err := c.GetAsset(ctx, asset); !errors.Is(err, registry.ErrAssetNotFound) {
		t.Errorf("GetAsset error = %v, want ErrAssetNotFound", err)
	}

	m := registry.Metadata{Name: "Art", Symbol: "ART", URI: "ipfs://art"}
	if _, err := c.CreateAsset(ctx, auth.Sign(creator, registry.CreatePayload(creator.Identity(), asset, m), 1), asset, m); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	name := "Forged"
	changes := registry.Changes{Name: &name}
	_, err = c.UpdateAsset(ctx, auth.Sign(other, registry.UpdatePayload(other.Identity(), asset, changes), 1), asset, changes)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "UNAUTHORIZED" {
		t.Errorf("UpdateAsset by non-creator error = %v, want UNAUTHORIZED", err)
	}

	rec, err := c.UpdateAsset(ctx, auth.Sign(creator, registry.UpdatePayload(creator.Identity(), asset, changes), 2), asset, changes)
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if rec.Name != "Forged" || rec.Symbol != "ART" {
		t.Errorf("updated record = %+v", rec)
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"STILL_LOCKED", vault.ErrStillLocked},
		{"INSUFFICIENT_FUNDS", vault.ErrInsufficientFunds},
		{"NOT_FOUND", registry.ErrAssetNotFound},
	}

	for _, tt := range tests {
		err := error(&APIError{Code: tt.code, Message: "x"})
		if !errors.Is(err, tt.want) {
			t.Errorf("errors.Is(%s, %v) = false", tt.code, tt.want)
		}
	}

	if errors.Unwrap(&APIError{Code: "INTERNAL_ERROR"}) != nil {
		t.Error("unknown codes should not unwrap")
	}
}
