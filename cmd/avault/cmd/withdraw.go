package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw AMOUNT",
	Short: "Withdraw collected fees (authority only)",
	Long: `Move collected fees from the vault to the authority's account. AMOUNT is
in whole units with up to nine decimal places.

Examples:
  avault withdraw 0.03`,
	Args: cobra.ExactArgs(1),
	RunE: runWithdraw,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
}

func runWithdraw(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	kp, err := loadSigner()
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		cred := auth.Sign(kp, vault.WithdrawPayload(kp.Identity(), amount), 0)
		ledger, err := b.Withdraw(ctx, cred, amount)
		if err != nil {
			return fmt.Errorf("failed to withdraw: %w", err)
		}

		return render(ledger, func() {
			Success("Withdrew %s", formatAmount(amount))
			PrintKeyValue("Fees remaining", formatAmount(ledger.TotalFeesCollected))
		})
	})
}
