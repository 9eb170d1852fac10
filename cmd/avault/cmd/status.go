package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault status",
	Long:  "Show the vault authority, fee rate, collected fees, active locks and whether the ledger matches custody balances.",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		st, err := b.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read vault: %w", err)
		}

		source := vaultPath()
		if url := getServerURL(); url != "" {
			source = url
		}

		return render(st, func() {
			PrintKeyValue("Vault", source)
			if !st.Initialized {
				PrintKeyValue("Status", "not initialized")
				return
			}
			PrintKeyValue("Status", "initialized")
			PrintKeyValue("Authority", st.Authority.String())
			PrintKeyValue("Fee per day", formatAmount(st.FeeRatePerDay))
			PrintKeyValue("Fees collected", formatAmount(st.TotalFeesCollected))
			PrintKeyValue("Active locks", fmt.Sprintf("%d", st.ActiveLocks))
			PrintKeyValue("Events", fmt.Sprintf("%d", st.EventLogHead))
			if !st.Consistent() {
				Warning("ledger does not match custody balances")
			}
		})
	})
}
