// Package mcp exposes read-only views of the vault and asset registry as
// Model Context Protocol tools.
package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

// VaultMCPServer wraps a vault and registry and exposes them as an MCP server.
type VaultMCPServer struct {
	server   *sdkmcp.Server
	vault    *vault.Vault
	registry *registry.Registry
	policy   *AccessPolicy
}

// NewVaultMCPServer creates a new MCP server backed by the given vault,
// registry and policy. Tools the policy denies are not registered.
func NewVaultMCPServer(v *vault.Vault, reg *registry.Registry, policy *AccessPolicy) *VaultMCPServer {
	if policy == nil {
		policy = DefaultPolicy()
	}

	s := &VaultMCPServer{
		vault:    v,
		registry: reg,
		policy:   policy,
	}

	s.server = sdkmcp.NewServer(
		&sdkmcp.Implementation{
			Name:    "assetvault",
			Version: "1.0.0",
		},
		&sdkmcp.ServerOptions{
			Instructions: "AssetVault holds assets in custody and charges a per-day fee on release. " +
				"These tools are read-only: use vault_quote_fee to see what releasing a lock would cost now.",
		},
	)

	s.registerVaultTools()
	s.registerEventTools()
	s.registerAssetTools()

	return s
}

// Run starts the MCP server on the stdio transport.
func (s *VaultMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdkmcp.StdioTransport{})
}

// addTool registers a tool when the policy allows it.
func addTool[In, Out any](s *VaultMCPServer, tool *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	if !s.policy.CanUseTool(tool.Name) {
		return
	}
	sdkmcp.AddTool(s.server, tool, h)
}
