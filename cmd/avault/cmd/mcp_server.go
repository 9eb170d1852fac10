package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/mcp"
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start a read-only MCP server (stdio)",
	Long: `Serve vault state to AI agents over the Model Context Protocol.
Communicates over stdin/stdout using JSON-RPC. Tools are read-only and can be
restricted with mcp-policy.yaml in the data directory.

Configure in .claude/settings.local.json:
  {
    "mcpServers": {
      "avault": {
        "command": "avault",
        "args": ["mcp-server"]
      }
    }
  }`,
	Hidden: true,
	RunE:   runMCPServer,
}

func init() {
	rootCmd.AddCommand(mcpServerCmd)
}

func runMCPServer(cmd *cobra.Command, _ []string) error {
	if getServerURL() != "" {
		return fmt.Errorf("mcp-server reads the local vault, unset --server")
	}

	b, err := openLocal()
	if err != nil {
		return err
	}
	defer b.Close()

	policy, err := mcp.LoadPolicy(filepath.Join(getDataDir(), mcp.PolicyFilename))
	if err != nil {
		return err
	}
	if policy == nil {
		policy = mcp.DefaultPolicy()
	}

	return mcp.NewVaultMCPServer(b.Vault, b.reg, policy).Run(cmd.Context())
}
