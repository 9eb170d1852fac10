package store

import "github.com/abdul-hamid-achik/assetvault/internal/crypto"

// Store defines the transactional storage used by the vault, the custody
// layer and the asset registry. Every function passed to Update runs in a
// single serialized read-write transaction: if it returns an error, none of
// its writes are applied.
type Store interface {
	View(fn func(tx Tx) error) error
	Update(fn func(tx Tx) error) error

	// Lifecycle
	Meta() (*Meta, error)
	Close() error
}

// Tx is the set of operations available inside a transaction.
type Tx interface {
	// Vault ledger
	GetLedger() (*Ledger, error)
	PutLedger(ledger *Ledger) error

	// Lock records
	GetLock(key string) (*LockRecord, error)
	CreateLock(key string, rec *LockRecord) error
	DeleteLock(key string) error
	ListLocks(limit int) ([]*LockRecord, error)
	CountLocks() (int, error)

	// Custody accounts
	AssetOwner(asset crypto.Address) (Account, error)
	SetAssetOwner(asset crypto.Address, owner Account) error
	ListHoldings(owner Account) ([]crypto.Address, error)
	Balance(account Account) (uint64, error)
	SetBalance(account Account, amount uint64) error

	// Asset metadata
	GetAsset(id crypto.Address) (*AssetRecord, error)
	CreateAsset(rec *AssetRecord) error
	PutAsset(rec *AssetRecord) error

	// Events
	AppendEvent(ev *Event) error
	ListEvents(after uint64, limit int) ([]*Event, error)
	EventHead() (uint64, error)

	// Replay protection
	LastNonce(id crypto.Address) (uint64, error)
	SetNonce(id crypto.Address, nonce uint64) error
}
