package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/custody"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

// backend is the set of vault and registry operations the CLI drives. It is
// served by a local vault database or by a remote API.
type backend interface {
	Stats(ctx context.Context) (*vault.Stats, error)
	Initialize(ctx context.Context, cred auth.Credential) (*store.Ledger, error)
	Lock(ctx context.Context, cred auth.Credential, asset crypto.Address, duration int64) (*store.LockRecord, error)
	GetLock(ctx context.Context, depositor, asset crypto.Address) (*store.LockRecord, error)
	Quote(ctx context.Context, depositor, asset crypto.Address) (*vault.Quote, error)
	Unlock(ctx context.Context, cred auth.Credential, depositor, asset crypto.Address) (*vault.Receipt, error)
	Withdraw(ctx context.Context, cred auth.Credential, amount uint64) (*store.Ledger, error)
	Fund(ctx context.Context, account crypto.Address, amount uint64) (uint64, error)
	Account(ctx context.Context, id crypto.Address) (*custody.AccountInfo, error)
	Events(ctx context.Context, after uint64, limit int) ([]*store.Event, error)

	CreateAsset(ctx context.Context, cred auth.Credential, asset crypto.Address, m registry.Metadata) (*store.AssetRecord, error)
	UpdateAsset(ctx context.Context, cred auth.Credential, asset crypto.Address, c registry.Changes) (*store.AssetRecord, error)
	GetAsset(ctx context.Context, asset crypto.Address) (*store.AssetRecord, error)

	Close() error
}

// localBackend runs operations directly against a vault database.
type localBackend struct {
	*vault.Vault
	reg *registry.Registry
}

func (b *localBackend) CreateAsset(ctx context.Context, cred auth.Credential, asset crypto.Address, m registry.Metadata) (*store.AssetRecord, error) {
	return b.reg.Create(ctx, cred, asset, m)
}

func (b *localBackend) UpdateAsset(ctx context.Context, cred auth.Credential, asset crypto.Address, c registry.Changes) (*store.AssetRecord, error) {
	return b.reg.Update(ctx, cred, asset, c)
}

func (b *localBackend) GetAsset(ctx context.Context, asset crypto.Address) (*store.AssetRecord, error) {
	return b.reg.Get(ctx, asset)
}

// openLocal opens the vault database in the data directory.
func openLocal() (*localBackend, error) {
	v, err := vault.Open(getDataDir(),
		vault.WithFeeRate(viper.GetUint64("fee_rate_per_day")),
		vault.WithFaucet(viper.GetBool("allow_faucet")),
	)
	if err != nil {
		return nil, err
	}
	return &localBackend{Vault: v, reg: registry.New(v.Store(), nil)}, nil
}

// openBackend returns the remote API client when --server is set, otherwise
// the local vault.
func openBackend() (backend, error) {
	if url := getServerURL(); url != "" {
		return NewClient(url), nil
	}
	return openLocal()
}

// vaultPath returns the local vault database path, for display.
func vaultPath() string {
	return filepath.Join(getDataDir(), "vault.db")
}
