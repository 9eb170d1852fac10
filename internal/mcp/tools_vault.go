package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

// --- vault_status ---

type statusInput struct{}

type statusOutput struct {
	Initialized        bool   `json:"initialized"`
	Authority          string `json:"authority,omitempty"`
	FeeRatePerDay      uint64 `json:"fee_rate_per_day"`
	TotalFeesCollected uint64 `json:"total_fees_collected"`
	ActiveLocks        int    `json:"active_locks"`
	EventLogHead       uint64 `json:"event_log_head"`
	Consistent         bool   `json:"consistent"`
}

// --- vault_get_lock ---

type lockInput struct {
	Depositor string `json:"depositor" jsonschema:"Base58 identity of the depositor."`
	Asset     string `json:"asset" jsonschema:"Base58 asset identifier."`
}

type lockOutput struct {
	Depositor     string `json:"depositor"`
	Asset         string `json:"asset"`
	LockTime      int64  `json:"lock_time"`
	UnlockTime    int64  `json:"unlock_time"`
	FeeRatePerDay uint64 `json:"fee_rate_per_day"`
}

// --- vault_quote_fee ---

type quoteOutput struct {
	Lock             lockOutput `json:"lock"`
	Now              int64      `json:"now"`
	DaysHeld         uint64     `json:"days_held"`
	Fee              uint64     `json:"fee"`
	Eligible         bool       `json:"eligible"`
	SecondsRemaining int64      `json:"seconds_remaining"`
}

func (s *VaultMCPServer) registerVaultTools() {
	addTool(s, &sdkmcp.Tool{
		Name:        "vault_status",
		Description: "Show the vault ledger: authority, fee rate, collected fees and active lock count.",
	}, s.handleStatus)

	addTool(s, &sdkmcp.Tool{
		Name:        "vault_get_lock",
		Description: "Get the lock record for a depositor and asset.",
	}, s.handleGetLock)

	addTool(s, &sdkmcp.Tool{
		Name:        "vault_quote_fee",
		Description: "Quote the fee a lock would be charged if released now, and whether it can be released yet.",
	}, s.handleQuoteFee)
}

func (s *VaultMCPServer) handleStatus(ctx context.Context, _ *sdkmcp.CallToolRequest, _ statusInput) (*sdkmcp.CallToolResult, statusOutput, error) {
	st, err := s.vault.Stats(ctx)
	if err != nil {
		return nil, statusOutput{}, fmt.Errorf("read vault: %w", err)
	}

	out := statusOutput{
		Initialized:        st.Initialized,
		FeeRatePerDay:      st.FeeRatePerDay,
		TotalFeesCollected: st.TotalFeesCollected,
		ActiveLocks:        st.ActiveLocks,
		EventLogHead:       st.EventLogHead,
		Consistent:         st.Consistent(),
	}
	if st.Initialized {
		out.Authority = s.identity(st.Authority)
	}
	return nil, out, nil
}

func parsePair(in lockInput) (depositor, asset crypto.Address, err error) {
	if depositor, err = crypto.ParseAddress(in.Depositor); err != nil {
		return depositor, asset, fmt.Errorf("invalid depositor: %w", err)
	}
	if asset, err = crypto.ParseAddress(in.Asset); err != nil {
		return depositor, asset, fmt.Errorf("invalid asset: %w", err)
	}
	return depositor, asset, nil
}

func (s *VaultMCPServer) lockOutput(lock *store.LockRecord) lockOutput {
	return lockOutput{
		Depositor:     s.identity(lock.Depositor),
		Asset:         lock.Asset.String(),
		LockTime:      lock.LockTime,
		UnlockTime:    lock.UnlockTime,
		FeeRatePerDay: lock.FeeRatePerDay,
	}
}

func (s *VaultMCPServer) handleGetLock(ctx context.Context, _ *sdkmcp.CallToolRequest, input lockInput) (*sdkmcp.CallToolResult, lockOutput, error) {
	depositor, asset, err := parsePair(input)
	if err != nil {
		return nil, lockOutput{}, err
	}

	lock, err := s.vault.GetLock(ctx, depositor, asset)
	if err != nil {
		return nil, lockOutput{}, fmt.Errorf("get lock: %w", err)
	}
	return nil, s.lockOutput(lock), nil
}

func (s *VaultMCPServer) handleQuoteFee(ctx context.Context, _ *sdkmcp.CallToolRequest, input lockInput) (*sdkmcp.CallToolResult, quoteOutput, error) {
	depositor, asset, err := parsePair(input)
	if err != nil {
		return nil, quoteOutput{}, err
	}

	q, err := s.vault.Quote(ctx, depositor, asset)
	if err != nil {
		return nil, quoteOutput{}, fmt.Errorf("quote fee: %w", err)
	}
	return nil, quoteOutput{
		Lock:             s.lockOutput(q.Lock),
		Now:              q.Now,
		DaysHeld:         q.DaysHeld,
		Fee:              q.Fee,
		Eligible:         q.Eligible,
		SecondsRemaining: q.SecondsRemaining,
	}, nil
}
