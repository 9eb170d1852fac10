package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the vault with you as authority",
	Long: `Create the vault ledger. The signing key's identity becomes the vault
authority, the only identity allowed to withdraw collected fees.

Examples:
  avault init
  avault --server http://localhost:8080 init`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	kp, err := loadSigner()
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		cred := auth.Sign(kp, vault.InitializePayload(kp.Identity()), 0)
		ledger, err := b.Initialize(ctx, cred)
		if err != nil {
			return fmt.Errorf("failed to initialize vault: %w", err)
		}

		return render(ledger, func() {
			Success("Vault initialized")
			PrintKeyValue("Authority", ledger.Authority.String())
		})
	})
}
