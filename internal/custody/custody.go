// Package custody moves assets and fungible balances between custody
// accounts. Every function runs inside the caller's store transaction, so a
// transfer commits or rolls back together with the caller's own writes.
package custody

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

var (
	// ErrNotAuthorized is returned when the authority does not control the source account.
	ErrNotAuthorized = errors.New("transfer not authorized for source account")

	// ErrNotHolder is returned when the source account does not hold the asset.
	ErrNotHolder = errors.New("source account does not hold the asset")

	// ErrInsufficientBalance is returned when the source balance is below the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBalanceOverflow is returned when crediting would overflow the destination.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrAlreadyIssued is returned when issuing an asset that already has a holder.
	ErrAlreadyIssued = errors.New("asset already issued")

	// ErrVaultAccount is returned when an external deposit targets a vault account.
	ErrVaultAccount = errors.New("vault accounts cannot receive external deposits")
)

// Authority decides whether transfers out of an account are permitted.
type Authority interface {
	Controls(account store.Account) bool
}

// Owner is the authority a verified identity holds over its own account.
// Callers must verify the identity's signature before using it.
type Owner crypto.Address

// Controls reports whether account is the identity's own account.
func (o Owner) Controls(account store.Account) bool {
	return account == store.UserAccount(crypto.Address(o))
}

// TransferAsset moves the single unit of asset from one account to another.
func TransferAsset(tx store.Tx, auth Authority, asset crypto.Address, from, to store.Account) error {
	if !auth.Controls(from) {
		return ErrNotAuthorized
	}

	owner, err := tx.AssetOwner(asset)
	if errors.Is(err, store.ErrAssetNotHeld) {
		return fmt.Errorf("%w: %s", ErrNotHolder, asset)
	}
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("%w: %s", ErrNotHolder, asset)
	}

	return tx.SetAssetOwner(asset, to)
}

// TransferFunds moves amount of the fungible balance between accounts.
func TransferFunds(tx store.Tx, auth Authority, from, to store.Account, amount uint64) error {
	if !auth.Controls(from) {
		return ErrNotAuthorized
	}
	if amount == 0 || from == to {
		return nil
	}

	fromBal, err := tx.Balance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, fromBal, amount)
	}

	toBal, err := tx.Balance(to)
	if err != nil {
		return err
	}
	newTo, carry := bits.Add64(toBal, amount, 0)
	if carry != 0 {
		return ErrBalanceOverflow
	}

	if err := tx.SetBalance(from, fromBal-amount); err != nil {
		return err
	}
	return tx.SetBalance(to, newTo)
}

// Issue places the single unit of a new asset in owner's account.
func Issue(tx store.Tx, asset crypto.Address, owner store.Account) error {
	_, err := tx.AssetOwner(asset)
	if err == nil {
		return ErrAlreadyIssued
	}
	if !errors.Is(err, store.ErrAssetNotHeld) {
		return err
	}
	return tx.SetAssetOwner(asset, owner)
}

// Deposit credits amount to a user account from outside the system.
func Deposit(tx store.Tx, to store.Account, amount uint64) (uint64, error) {
	if to.IsVaultAccount() {
		return 0, ErrVaultAccount
	}
	bal, err := tx.Balance(to)
	if err != nil {
		return 0, err
	}
	newBal, carry := bits.Add64(bal, amount, 0)
	if carry != 0 {
		return 0, ErrBalanceOverflow
	}
	return newBal, tx.SetBalance(to, newBal)
}

// AccountInfo is a point-in-time view of a custody account.
type AccountInfo struct {
	Account  store.Account    `json:"account"`
	Balance  uint64           `json:"balance"`
	Holdings []crypto.Address `json:"holdings"`
}

// Inspect returns the balance and held assets of account.
func Inspect(tx store.Tx, account store.Account) (*AccountInfo, error) {
	bal, err := tx.Balance(account)
	if err != nil {
		return nil, err
	}
	holdings, err := tx.ListHoldings(account)
	if err != nil {
		return nil, err
	}
	if holdings == nil {
		holdings = []crypto.Address{}
	}
	return &AccountInfo{Account: account, Balance: bal, Holdings: holdings}, nil
}
