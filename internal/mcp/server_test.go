package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if !p.CanUseTool("vault_status") {
		t.Error("default policy should expose every tool")
	}
	if p.RedactIdentities {
		t.Error("RedactIdentities should be off by default")
	}
	if p.MaxEvents != 100 {
		t.Errorf("MaxEvents = %d, want 100", p.MaxEvents)
	}
}

func TestPolicyCanUseTool(t *testing.T) {
	tests := []struct {
		name     string
		policy   AccessPolicy
		tool     string
		expected bool
	}{
		{
			name:     "allow all",
			policy:   AccessPolicy{ToolsAllow: []string{"*"}},
			tool:     "vault_status",
			expected: true,
		},
		{
			name:     "allow by prefix",
			policy:   AccessPolicy{ToolsAllow: []string{"vault_*"}},
			tool:     "asset_get",
			expected: false,
		},
		{
			name:     "deny takes precedence over allow",
			policy:   AccessPolicy{ToolsAllow: []string{"*"}, ToolsDeny: []string{"vault_list_events"}},
			tool:     "vault_list_events",
			expected: false,
		},
		{
			name:     "empty allow list allows all",
			policy:   AccessPolicy{},
			tool:     "asset_get",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.CanUseTool(tt.tool); got != tt.expected {
				t.Errorf("CanUseTool(%q) = %v, want %v", tt.tool, got, tt.expected)
			}
		})
	}
}

func TestPolicyEventLimit(t *testing.T) {
	p := &AccessPolicy{MaxEvents: 10}
	tests := []struct {
		requested, want int
	}{
		{0, 10},
		{-3, 10},
		{5, 5},
		{10, 10},
		{11, 10},
	}
	for _, tt := range tests {
		if got := p.EventLimit(tt.requested); got != tt.want {
			t.Errorf("EventLimit(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}

	if got := (&AccessPolicy{}).EventLimit(500); got != defaultMaxEvents {
		t.Errorf("unset MaxEvents: EventLimit = %d, want %d", got, defaultMaxEvents)
	}
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadPolicy(filepath.Join(dir, PolicyFilename))
	if err != nil || p != nil {
		t.Fatalf("missing file: got %v, %v; want nil, nil", p, err)
	}

	path := filepath.Join(dir, PolicyFilename)
	yaml := "tools_deny:\n  - asset_get\nmax_events: 25\nredact_identities: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	p, err = LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if p.CanUseTool("asset_get") || !p.CanUseTool("vault_status") {
		t.Errorf("tool filter = %+v", p)
	}
	if p.MaxEvents != 25 || !p.RedactIdentities {
		t.Errorf("policy = %+v", p)
	}
}

func TestIdentityRedaction(t *testing.T) {
	a, err := crypto.NewRandomAddress()
	if err != nil {
		t.Fatalf("NewRandomAddress: %v", err)
	}

	plain := &VaultMCPServer{policy: DefaultPolicy()}
	if got := plain.identity(a); got != a.String() {
		t.Errorf("identity = %q, want %q", got, a.String())
	}

	redacted := &VaultMCPServer{policy: &AccessPolicy{RedactIdentities: true}}
	got := redacted.identity(a)
	full := a.String()
	if got == full || !strings.HasPrefix(got, full[:4]) || !strings.HasSuffix(got, full[len(full)-4:]) {
		t.Errorf("identity = %q, want redacted form of %q", got, full)
	}
}

// fixture is a vault with one initialized ledger and one active lock.
type fixture struct {
	v         *vault.Vault
	reg       *registry.Registry
	depositor crypto.Address
	asset     crypto.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	v := vault.New(s, vault.WithFaucet(true))
	t.Cleanup(func() { v.Close() })
	reg := registry.New(s, nil)
	ctx := context.Background()

	authority, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	depositor, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	asset, err := crypto.NewRandomAddress()
	if err != nil {
		t.Fatalf("NewRandomAddress: %v", err)
	}

	if _, err := v.Initialize(ctx, auth.Sign(authority, vault.InitializePayload(authority.Identity()), 1)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	meta := registry.Metadata{Name: "Painting", Symbol: "ART", URI: "ipfs://painting"}
	if _, err := reg.Create(ctx, auth.Sign(depositor, registry.CreatePayload(depositor.Identity(), asset, meta), 1), asset, meta); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := v.Lock(ctx, auth.Sign(depositor, vault.LockPayload(depositor.Identity(), asset, 3600), 2), asset, 3600); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	return &fixture{v: v, reg: reg, depositor: depositor.Identity(), asset: asset}
}

func connect(t *testing.T, srv *VaultMCPServer) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	t1, t2 := sdkmcp.NewInMemoryTransports()

	if _, err := srv.server.Connect(ctx, t1, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool[T any](t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	text := res.Content[0].(*sdkmcp.TextContent).Text
	if res.IsError {
		t.Fatalf("%s returned error: %s", name, text)
	}
	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal %s: %v", name, err)
	}
	return out
}

// TestMCPServerIntegration tests tool registration and calls via in-memory transport.
func TestMCPServerIntegration(t *testing.T) {
	f := newFixture(t)
	cs := connect(t, NewVaultMCPServer(f.v, f.reg, DefaultPolicy()))
	ctx := context.Background()
	pair := map[string]any{"depositor": f.depositor.String(), "asset": f.asset.String()}

	t.Run("list_tools", func(t *testing.T) {
		toolNames := make(map[string]bool)
		for tool, err := range cs.Tools(ctx, nil) {
			if err != nil {
				t.Fatalf("list tools: %v", err)
			}
			toolNames[tool.Name] = true
		}
		for _, name := range []string{"vault_status", "vault_get_lock", "vault_quote_fee", "vault_list_events", "asset_get"} {
			if !toolNames[name] {
				t.Errorf("missing tool: %s", name)
			}
		}
	})

	t.Run("vault_status", func(t *testing.T) {
		out := callTool[statusOutput](t, cs, "vault_status", nil)
		if !out.Initialized || out.ActiveLocks != 1 || !out.Consistent {
			t.Errorf("status = %+v", out)
		}
		if out.FeeRatePerDay != vault.DefaultFeeRatePerDay {
			t.Errorf("fee rate = %d, want %d", out.FeeRatePerDay, vault.DefaultFeeRatePerDay)
		}
	})

	t.Run("vault_get_lock", func(t *testing.T) {
		out := callTool[lockOutput](t, cs, "vault_get_lock", pair)
		if out.Depositor != f.depositor.String() || out.UnlockTime != out.LockTime+3600 {
			t.Errorf("lock = %+v", out)
		}
	})

	t.Run("vault_quote_fee", func(t *testing.T) {
		out := callTool[quoteOutput](t, cs, "vault_quote_fee", pair)
		if out.Eligible {
			t.Error("lock should not be eligible before unlock_time")
		}
		if out.DaysHeld != 1 || out.Fee != vault.DefaultFeeRatePerDay {
			t.Errorf("quote = %+v, want one day minimum fee", out)
		}
	})

	t.Run("vault_list_events", func(t *testing.T) {
		out := callTool[listEventsOutput](t, cs, "vault_list_events", map[string]any{"after": 1, "limit": 10})
		if len(out.Events) != 2 {
			t.Fatalf("got %d events, want 2", len(out.Events))
		}
		if out.Events[0].Type != "asset.created" || out.Events[1].Type != "asset.locked" {
			t.Errorf("events = %+v", out.Events)
		}
		if out.Next != out.Events[1].Seq {
			t.Errorf("next = %d, want %d", out.Next, out.Events[1].Seq)
		}
	})

	t.Run("asset_get", func(t *testing.T) {
		out := callTool[assetOutput](t, cs, "asset_get", map[string]any{"asset": f.asset.String()})
		if out.Symbol != "ART" || out.Creator != f.depositor.String() {
			t.Errorf("asset = %+v", out)
		}
	})

	t.Run("missing_lock_is_tool_error", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "vault_get_lock",
			Arguments: map[string]any{"depositor": f.asset.String(), "asset": f.asset.String()},
		})
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if !res.IsError {
			t.Error("expected tool error for missing lock")
		}
	})
}

func TestMCPServer_PolicyHidesTools(t *testing.T) {
	f := newFixture(t)
	policy := &AccessPolicy{ToolsAllow: []string{"vault_*"}, ToolsDeny: []string{"vault_list_events"}}
	cs := connect(t, NewVaultMCPServer(f.v, f.reg, policy))

	names := make(map[string]bool)
	for tool, err := range cs.Tools(context.Background(), nil) {
		if err != nil {
			t.Fatalf("list tools: %v", err)
		}
		names[tool.Name] = true
	}
	if names["vault_list_events"] || names["asset_get"] {
		t.Errorf("denied tools exposed: %v", names)
	}
	if !names["vault_status"] {
		t.Errorf("allowed tool missing: %v", names)
	}
}
