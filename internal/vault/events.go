package vault

import "github.com/abdul-hamid-achik/assetvault/internal/crypto"

// VaultInitialized is the data of a vault.initialized event.
type VaultInitialized struct {
	Authority crypto.Address `json:"authority"`
}

// AssetLocked is the data of an asset.locked event.
type AssetLocked struct {
	Depositor  crypto.Address `json:"depositor"`
	Asset      crypto.Address `json:"asset"`
	LockTime   int64          `json:"lock_time"`
	UnlockTime int64          `json:"unlock_time"`
}

// AssetUnlocked is the data of an asset.unlocked event. UnlockTime is the
// actual release time.
type AssetUnlocked struct {
	Depositor  crypto.Address `json:"depositor"`
	Asset      crypto.Address `json:"asset"`
	UnlockTime int64          `json:"unlock_time"`
	FeePaid    uint64         `json:"fee_paid"`
}

// FeesWithdrawn is the data of a fees.withdrawn event.
type FeesWithdrawn struct {
	Authority crypto.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
}

// FundsDeposited is the data of a funds.deposited event.
type FundsDeposited struct {
	Account crypto.Address `json:"account"`
	Amount  uint64         `json:"amount"`
	Balance uint64         `json:"balance"`
}
