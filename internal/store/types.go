package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

// Meta holds store-level metadata written when the database is created.
type Meta struct {
	Version   int       `json:"version"`
	StoreID   string    `json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger is the singleton vault record.
type Ledger struct {
	Authority          crypto.Address `json:"authority"`
	TotalFeesCollected uint64         `json:"total_fees_collected"`
	CreatedAt          time.Time      `json:"created_at"`
}

// LockRecord is one active custody hold.
type LockRecord struct {
	Depositor     crypto.Address `json:"depositor"`
	Asset         crypto.Address `json:"asset"`
	LockTime      int64          `json:"lock_time"`
	UnlockTime    int64          `json:"unlock_time"`
	FeeRatePerDay uint64         `json:"fee_rate_per_day"`
}

// Account names a custody account. User accounts are the base58 form of the
// owning identity; the vault owns the accounts below.
type Account string

const (
	// AccountEscrow holds assets while they are locked.
	AccountEscrow Account = "vault/escrow"
	// AccountFees holds the fee balance tracked by the ledger.
	AccountFees Account = "vault/fees"
)

// UserAccount returns the custody account controlled by id.
func UserAccount(id crypto.Address) Account {
	return Account(id.String())
}

// IsVaultAccount reports whether the account is owned by the vault.
func (a Account) IsVaultAccount() bool {
	return a == AccountEscrow || a == AccountFees
}

// AssetRecord is the registry's descriptive record for an asset.
type AssetRecord struct {
	ID        crypto.Address `json:"id"`
	Creator   crypto.Address `json:"creator"`
	Name      string         `json:"name"`
	Symbol    string         `json:"symbol"`
	URI       string         `json:"uri"`
	ContentID string         `json:"content_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Event is an append-only log entry. Seq is assigned by the store.
type Event struct {
	Seq       uint64          `json:"seq"`
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
