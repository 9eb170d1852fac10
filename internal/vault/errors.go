package vault

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/assetvault/internal/custody"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

var (
	// ErrAlreadyInitialized is returned when the ledger already exists.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrNotInitialized is returned when an operation needs the ledger before it exists.
	ErrNotInitialized = errors.New("vault not initialized")

	// ErrRecordAlreadyExists is returned when the (depositor, asset) pair is already locked.
	ErrRecordAlreadyExists = errors.New("lock record already exists")

	// ErrLockNotFound is returned when no lock record exists for the pair.
	ErrLockNotFound = errors.New("lock record not found")

	// ErrStillLocked is returned when release is requested before unlock_time.
	ErrStillLocked = errors.New("asset is still locked")

	// ErrTransferFailed is returned when an asset or fee transfer is rejected.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrOverflow is returned when fee or balance arithmetic would overflow.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the collected fees.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorized is returned when the caller may not perform the operation.
	ErrUnauthorized = errors.New("unauthorized")
)

// Kind returns a stable, lower-case name for the error's kind. It returns
// "ok" for nil and "internal" for errors outside the vault's taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrRecordAlreadyExists):
		return "record_already_exists"
	case errors.Is(err, ErrLockNotFound):
		return "lock_not_found"
	case errors.Is(err, ErrStillLocked):
		return "still_locked"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal"
	}
}

// transferError classifies a custody failure. Overflow while crediting is
// reported as an arithmetic failure, everything else as a rejected transfer.
func transferError(err error) error {
	if errors.Is(err, custody.ErrBalanceOverflow) {
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	return fmt.Errorf("%w: %w", ErrTransferFailed, err)
}

// mapStoreError translates store-level sentinel errors to vault-level errors.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrLedgerNotFound) {
		return ErrNotInitialized
	}
	if errors.Is(err, store.ErrLockNotFound) {
		return ErrLockNotFound
	}
	if errors.Is(err, store.ErrLockExists) {
		return ErrRecordAlreadyExists
	}
	return err
}
