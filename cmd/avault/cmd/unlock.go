package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock ASSET",
	Short: "Release a locked asset and pay the fee",
	Long: `Release an asset you locked. The fee is charged from your balance and
the asset returns to your account.

Examples:
  avault quote 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU
  avault unlock 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(cmd *cobra.Command, args []string) error {
	asset, err := parseAddress("asset", args[0])
	if err != nil {
		return err
	}
	kp, err := loadSigner()
	if err != nil {
		return err
	}
	depositor := kp.Identity()

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		// The release is signed over the hold's lock time.
		lock, err := b.GetLock(ctx, depositor, asset)
		if err != nil {
			return fmt.Errorf("failed to read lock: %w", err)
		}

		cred := auth.Sign(kp, vault.UnlockPayload(depositor, asset, lock.LockTime), 0)
		receipt, err := b.Unlock(ctx, cred, depositor, asset)
		if err != nil {
			return fmt.Errorf("failed to unlock asset: %w", err)
		}

		return render(receipt, func() {
			Success("Asset released")
			PrintKeyValue("Asset", receipt.Asset.String())
			PrintKeyValue("Days held", fmt.Sprintf("%d", receipt.DaysHeld))
			PrintKeyValue("Fee paid", formatAmount(receipt.FeePaid))
		})
	})
}
