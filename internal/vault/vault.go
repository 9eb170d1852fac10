// Package vault implements the custody vault's accounting engine: it locks
// assets on behalf of depositors, charges a per-day fee on release and lets
// the vault authority withdraw the fees collected.
//
// Each operation runs in a single store transaction. Asset and fee transfers
// happen inside that transaction, so an operation either applies all of its
// effects or none of them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/custody"
	"github.com/abdul-hamid-achik/assetvault/internal/events"
	"github.com/abdul-hamid-achik/assetvault/internal/logging"
	"github.com/abdul-hamid-achik/assetvault/internal/metrics"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

const dbFilename = "vault.db"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// custodian is the vault's own transfer authority over the escrow and fee
// accounts. It never leaves this package.
type custodian struct{}

func (custodian) Controls(account store.Account) bool {
	return account.IsVaultAccount()
}

// Vault orchestrates the ledger, lock records and custody transfers.
type Vault struct {
	store     store.Store
	clock     Clock
	feeRate   uint64
	faucet    bool
	publisher events.Publisher
}

// Option configures a Vault.
type Option func(*Vault)

// WithClock sets the clock used for lock and release times.
func WithClock(c Clock) Option {
	return func(v *Vault) { v.clock = c }
}

// WithFeeRate sets the fee per day captured by new locks.
func WithFeeRate(rate uint64) Option {
	return func(v *Vault) { v.feeRate = rate }
}

// WithFaucet enables Fund.
func WithFaucet(enabled bool) Option {
	return func(v *Vault) { v.faucet = enabled }
}

// WithPublisher sets the sink committed events are published to.
func WithPublisher(p events.Publisher) Option {
	return func(v *Vault) { v.publisher = p }
}

// New returns a vault backed by s.
func New(s store.Store, opts ...Option) *Vault {
	v := &Vault{
		store:     s,
		clock:     SystemClock{},
		feeRate:   DefaultFeeRatePerDay,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open opens or creates the vault database in dir. The directory is created
// with 0700 permissions.
func Open(dir string, opts ...Option) (*Vault, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create vault directory: %w", err)
	}

	s, err := store.NewBoltStore(filepath.Join(dir, dbFilename))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return New(s, opts...), nil
}

// Close closes the publisher and the underlying store.
func (v *Vault) Close() error {
	pubErr := v.publisher.Close()
	if err := v.store.Close(); err != nil {
		return err
	}
	return pubErr
}

// Store returns the underlying store.
func (v *Vault) Store() store.Store {
	return v.store
}

// FeeRate returns the fee per day captured by new locks.
func (v *Vault) FeeRate() uint64 {
	return v.feeRate
}

// update runs fn in one write transaction, then records the outcome and
// publishes the committed events.
func (v *Vault) update(ctx context.Context, op string, fn func(tx store.Tx, rec *events.Recorder) error) error {
	var rec *events.Recorder
	now := v.clock.Now().UTC()

	err := v.store.Update(func(tx store.Tx) error {
		rec = events.NewRecorder(tx, now)
		return fn(tx, rec)
	})
	metrics.Operations.WithLabelValues(op, Kind(err)).Inc()
	if err != nil {
		logging.Logger(ctx).Debug("vault_operation_failed", "operation", op, "kind", Kind(err), "error", err)
		return err
	}

	if err := v.publisher.Publish(ctx, rec.Events()); err != nil {
		logging.Logger(ctx).Warn("event_publish_failed", "operation", op, "error", err)
	}
	return nil
}

// verify checks cred over payload inside tx.
func verify(tx store.Tx, cred auth.Credential, payload []byte) error {
	if err := auth.Verify(tx, cred, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}

// Initialize creates the ledger with the credential's identity as authority.
func (v *Vault) Initialize(ctx context.Context, cred auth.Credential) (*store.Ledger, error) {
	var ledger *store.Ledger

	err := v.update(ctx, "initialize", func(tx store.Tx, rec *events.Recorder) error {
		if _, err := tx.GetLedger(); err == nil {
			return ErrAlreadyInitialized
		} else if !errors.Is(err, store.ErrLedgerNotFound) {
			return err
		}

		if err := verify(tx, cred, InitializePayload(cred.Identity)); err != nil {
			return err
		}

		ledger = &store.Ledger{
			Authority: cred.Identity,
			CreatedAt: v.clock.Now().UTC(),
		}
		if err := tx.PutLedger(ledger); err != nil {
			return err
		}
		return rec.Record(events.TypeVaultInitialized, VaultInitialized{Authority: cred.Identity})
	})
	if err != nil {
		return nil, err
	}

	logging.Logger(ctx).Info("vault_initialized", "authority", ledger.Authority)
	return ledger, nil
}

// Lock moves asset from the depositor's account into escrow and records the
// hold. The depositor is the credential's identity.
func (v *Vault) Lock(ctx context.Context, cred auth.Credential, asset crypto.Address, duration int64) (*store.LockRecord, error) {
	depositor := cred.Identity
	var lock *store.LockRecord

	err := v.update(ctx, "lock", func(tx store.Tx, rec *events.Recorder) error {
		if _, err := tx.GetLedger(); err != nil {
			return mapStoreError(err)
		}

		if err := verify(tx, cred, LockPayload(depositor, asset, duration)); err != nil {
			return err
		}

		key := crypto.LockKey(depositor, asset)
		if _, err := tx.GetLock(key); err == nil {
			return ErrRecordAlreadyExists
		} else if !errors.Is(err, store.ErrLockNotFound) {
			return err
		}

		now := v.clock.Now().Unix()
		unlockTime, err := addDuration(now, duration)
		if err != nil {
			return err
		}

		if err := custody.TransferAsset(tx, custody.Owner(depositor), asset,
			store.UserAccount(depositor), store.AccountEscrow); err != nil {
			return transferError(err)
		}

		lock = &store.LockRecord{
			Depositor:     depositor,
			Asset:         asset,
			LockTime:      now,
			UnlockTime:    unlockTime,
			FeeRatePerDay: v.feeRate,
		}
		if err := tx.CreateLock(key, lock); err != nil {
			return mapStoreError(err)
		}

		return rec.Record(events.TypeAssetLocked, AssetLocked{
			Depositor:  depositor,
			Asset:      asset,
			LockTime:   lock.LockTime,
			UnlockTime: lock.UnlockTime,
		})
	})
	if err != nil {
		return nil, err
	}

	logging.Logger(ctx).Info("asset_locked",
		"depositor", depositor,
		"asset", asset,
		"lock_time", lock.LockTime,
		"unlock_time", lock.UnlockTime,
	)
	return lock, nil
}

// Receipt describes a completed release.
type Receipt struct {
	Depositor  crypto.Address `json:"depositor"`
	Asset      crypto.Address `json:"asset"`
	LockTime   int64          `json:"lock_time"`
	UnlockTime int64          `json:"unlock_time"`
	DaysHeld   uint64         `json:"days_held"`
	FeePaid    uint64         `json:"fee_paid"`
}

// Unlock releases the (depositor, asset) hold. Anyone may relay the call,
// but only the recorded depositor's credential authorizes it and the asset
// always returns to the recorded depositor.
func (v *Vault) Unlock(ctx context.Context, cred auth.Credential, depositor, asset crypto.Address) (*Receipt, error) {
	var receipt *Receipt

	err := v.update(ctx, "unlock", func(tx store.Tx, rec *events.Recorder) error {
		key := crypto.LockKey(depositor, asset)
		lock, err := tx.GetLock(key)
		if err != nil {
			return mapStoreError(err)
		}

		if cred.Identity != lock.Depositor {
			return fmt.Errorf("%w: only the depositor may release the asset", ErrUnauthorized)
		}
		if err := verify(tx, cred, UnlockPayload(lock.Depositor, lock.Asset, lock.LockTime)); err != nil {
			return err
		}

		now := v.clock.Now().Unix()
		if now < lock.UnlockTime {
			return fmt.Errorf("%w: %d seconds remaining", ErrStillLocked, lock.UnlockTime-now)
		}

		elapsed := elapsedSince(lock.LockTime, now)
		fee, err := ComputeFee(elapsed, lock.FeeRatePerDay)
		if err != nil {
			return err
		}

		ledger, err := tx.GetLedger()
		if err != nil {
			return mapStoreError(err)
		}
		total, err := addFees(ledger.TotalFeesCollected, fee)
		if err != nil {
			return err
		}

		depositorAcct := store.UserAccount(lock.Depositor)
		if err := custody.TransferFunds(tx, custody.Owner(lock.Depositor), depositorAcct, store.AccountFees, fee); err != nil {
			return transferError(err)
		}
		ledger.TotalFeesCollected = total
		if err := tx.PutLedger(ledger); err != nil {
			return err
		}

		if err := custody.TransferAsset(tx, custodian{}, lock.Asset, store.AccountEscrow, depositorAcct); err != nil {
			return transferError(err)
		}
		if err := tx.DeleteLock(key); err != nil {
			return mapStoreError(err)
		}

		receipt = &Receipt{
			Depositor:  lock.Depositor,
			Asset:      lock.Asset,
			LockTime:   lock.LockTime,
			UnlockTime: now,
			DaysHeld:   DaysHeld(elapsed),
			FeePaid:    fee,
		}
		return rec.Record(events.TypeAssetUnlocked, AssetUnlocked{
			Depositor:  lock.Depositor,
			Asset:      lock.Asset,
			UnlockTime: now,
			FeePaid:    fee,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.FeesCollected.Add(float64(receipt.FeePaid))
	logging.Logger(ctx).Info("asset_unlocked",
		"depositor", receipt.Depositor,
		"asset", receipt.Asset,
		"days_held", receipt.DaysHeld,
		"fee_paid", receipt.FeePaid,
	)
	return receipt, nil
}

// Withdraw moves amount of the collected fees to the authority's account.
func (v *Vault) Withdraw(ctx context.Context, cred auth.Credential, amount uint64) (*store.Ledger, error) {
	var ledger *store.Ledger

	err := v.update(ctx, "withdraw", func(tx store.Tx, rec *events.Recorder) error {
		var err error
		ledger, err = tx.GetLedger()
		if err != nil {
			return mapStoreError(err)
		}

		if cred.Identity != ledger.Authority {
			return fmt.Errorf("%w: caller is not the vault authority", ErrUnauthorized)
		}
		if err := verify(tx, cred, WithdrawPayload(cred.Identity, amount)); err != nil {
			return err
		}

		if amount > ledger.TotalFeesCollected {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientFunds, amount, ledger.TotalFeesCollected)
		}

		if err := custody.TransferFunds(tx, custodian{}, store.AccountFees, store.UserAccount(ledger.Authority), amount); err != nil {
			return transferError(err)
		}
		ledger.TotalFeesCollected -= amount
		if err := tx.PutLedger(ledger); err != nil {
			return err
		}

		return rec.Record(events.TypeFeesWithdrawn, FeesWithdrawn{
			Authority: ledger.Authority,
			Amount:    amount,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.FeesWithdrawn.Add(float64(amount))
	logging.Logger(ctx).Info("fees_withdrawn",
		"authority", ledger.Authority,
		"amount", amount,
		"remaining", ledger.TotalFeesCollected,
	)
	return ledger, nil
}

// Fund credits amount to account from outside the system. It is a
// development faucet and only works when enabled with WithFaucet.
func (v *Vault) Fund(ctx context.Context, account crypto.Address, amount uint64) (uint64, error) {
	if !v.faucet {
		return 0, fmt.Errorf("%w: faucet disabled", ErrUnauthorized)
	}

	var balance uint64
	err := v.update(ctx, "fund", func(tx store.Tx, rec *events.Recorder) error {
		var err error
		balance, err = custody.Deposit(tx, store.UserAccount(account), amount)
		if errors.Is(err, custody.ErrBalanceOverflow) {
			return fmt.Errorf("%w: %w", ErrOverflow, err)
		}
		if err != nil {
			return err
		}
		return rec.Record(events.TypeFundsDeposited, FundsDeposited{
			Account: account,
			Amount:  amount,
			Balance: balance,
		})
	})
	if err != nil {
		return 0, err
	}

	logging.Logger(ctx).Info("funds_deposited", "account", account, "amount", amount, "balance", balance)
	return balance, nil
}

// addFees returns total + fee, or ErrOverflow.
func addFees(total, fee uint64) (uint64, error) {
	sum := total + fee
	if sum < total {
		return 0, fmt.Errorf("%w: total fees collected", ErrOverflow)
	}
	return sum, nil
}
