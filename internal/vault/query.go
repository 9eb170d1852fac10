package vault

import (
	"context"
	"errors"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/custody"
	"github.com/abdul-hamid-achik/assetvault/internal/metrics"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

// Ledger returns the vault ledger.
func (v *Vault) Ledger(ctx context.Context) (*store.Ledger, error) {
	var ledger *store.Ledger
	err := v.store.View(func(tx store.Tx) error {
		var err error
		ledger, err = tx.GetLedger()
		return err
	})
	return ledger, mapStoreError(err)
}

// LockAddress returns the record key of the (depositor, asset) hold.
func LockAddress(depositor, asset crypto.Address) string {
	return crypto.LockKey(depositor, asset)
}

// GetLock returns the active hold for (depositor, asset).
func (v *Vault) GetLock(ctx context.Context, depositor, asset crypto.Address) (*store.LockRecord, error) {
	var lock *store.LockRecord
	err := v.store.View(func(tx store.Tx) error {
		var err error
		lock, err = tx.GetLock(LockAddress(depositor, asset))
		return err
	})
	return lock, mapStoreError(err)
}

// ListLocks returns up to limit active holds.
func (v *Vault) ListLocks(ctx context.Context, limit int) ([]*store.LockRecord, error) {
	var locks []*store.LockRecord
	err := v.store.View(func(tx store.Tx) error {
		var err error
		locks, err = tx.ListLocks(limit)
		return err
	})
	return locks, err
}

// Quote is the fee a hold would be charged if released now.
type Quote struct {
	Lock             *store.LockRecord `json:"lock"`
	Now              int64             `json:"now"`
	ElapsedSeconds   int64             `json:"elapsed_seconds"`
	DaysHeld         uint64            `json:"days_held"`
	Fee              uint64            `json:"fee"`
	Eligible         bool              `json:"eligible"`
	SecondsRemaining int64             `json:"seconds_remaining"`
}

// Quote returns the current fee and release eligibility of a hold.
func (v *Vault) Quote(ctx context.Context, depositor, asset crypto.Address) (*Quote, error) {
	lock, err := v.GetLock(ctx, depositor, asset)
	if err != nil {
		return nil, err
	}

	now := v.clock.Now().Unix()
	elapsed := elapsedSince(lock.LockTime, now)
	fee, err := ComputeFee(elapsed, lock.FeeRatePerDay)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Lock:           lock,
		Now:            now,
		ElapsedSeconds: elapsed,
		DaysHeld:       DaysHeld(elapsed),
		Fee:            fee,
		Eligible:       now >= lock.UnlockTime,
	}
	if !q.Eligible {
		q.SecondsRemaining = lock.UnlockTime - now
	}
	return q, nil
}

// Events returns up to limit committed events with sequence above after.
func (v *Vault) Events(ctx context.Context, after uint64, limit int) ([]*store.Event, error) {
	var evs []*store.Event
	err := v.store.View(func(tx store.Tx) error {
		var err error
		evs, err = tx.ListEvents(after, limit)
		return err
	})
	if evs == nil {
		evs = []*store.Event{}
	}
	return evs, err
}

// Account returns the balance and holdings of an identity's account.
func (v *Vault) Account(ctx context.Context, id crypto.Address) (*custody.AccountInfo, error) {
	var info *custody.AccountInfo
	err := v.store.View(func(tx store.Tx) error {
		var err error
		info, err = custody.Inspect(tx, store.UserAccount(id))
		return err
	})
	return info, err
}

// Stats summarizes vault state.
type Stats struct {
	Initialized        bool           `json:"initialized"`
	Authority          crypto.Address `json:"authority"`
	FeeRatePerDay      uint64         `json:"fee_rate_per_day"`
	TotalFeesCollected uint64         `json:"total_fees_collected"`
	FeeAccountBalance  uint64         `json:"fee_account_balance"`
	ActiveLocks        int            `json:"active_locks"`
	EscrowedAssets     int            `json:"escrowed_assets"`
	EventLogHead       uint64         `json:"event_log_head"`
}

// Consistent reports whether the ledger matches the custody accounts: the
// collected fees equal the fee account balance and every escrowed asset has
// exactly one lock record.
func (s *Stats) Consistent() bool {
	return s.TotalFeesCollected == s.FeeAccountBalance && s.ActiveLocks == s.EscrowedAssets
}

// Stats reads a consistent snapshot of the vault.
func (v *Vault) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{FeeRatePerDay: v.feeRate}
	err := v.store.View(func(tx store.Tx) error {
		ledger, err := tx.GetLedger()
		switch {
		case err == nil:
			st.Initialized = true
			st.Authority = ledger.Authority
			st.TotalFeesCollected = ledger.TotalFeesCollected
		case !errors.Is(err, store.ErrLedgerNotFound):
			return err
		}

		if st.FeeAccountBalance, err = tx.Balance(store.AccountFees); err != nil {
			return err
		}
		if st.ActiveLocks, err = tx.CountLocks(); err != nil {
			return err
		}
		escrowed, err := tx.ListHoldings(store.AccountEscrow)
		if err != nil {
			return err
		}
		st.EscrowedAssets = len(escrowed)

		st.EventLogHead, err = tx.EventHead()
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Snapshot adapts Stats for the metrics collector.
func (v *Vault) Snapshot(ctx context.Context) (metrics.Snapshot, error) {
	st, err := v.Stats(ctx)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	return metrics.Snapshot{
		ActiveLocks:  st.ActiveLocks,
		FeeBalance:   st.TotalFeesCollected,
		EventLogHead: st.EventLogHead,
	}, nil
}
