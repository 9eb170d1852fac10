package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

var lockDuration time.Duration

var lockCmd = &cobra.Command{
	Use:   "lock ASSET",
	Short: "Lock an asset into custody",
	Long: `Move an asset you hold into vault custody. It can be released once the
duration has passed, for a fee of the per-day rate times the days held
(whole days elapsed plus one, so at least one day).

Examples:
  avault lock 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU --duration 72h`,
	Args: cobra.ExactArgs(1),
	RunE: runLock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.Flags().DurationVarP(&lockDuration, "duration", "d", 24*time.Hour, "minimum time in custody")
}

func runLock(cmd *cobra.Command, args []string) error {
	asset, err := parseAddress("asset", args[0])
	if err != nil {
		return err
	}
	kp, err := loadSigner()
	if err != nil {
		return err
	}
	seconds := int64(lockDuration / time.Second)

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		cred := auth.Sign(kp, vault.LockPayload(kp.Identity(), asset, seconds), 0)
		lock, err := b.Lock(ctx, cred, asset, seconds)
		if err != nil {
			return fmt.Errorf("failed to lock asset: %w", err)
		}

		return render(lock, func() {
			Success("Asset locked")
			printLock(lock.Depositor.String(), lock.Asset.String(), lock.LockTime, lock.UnlockTime, lock.FeeRatePerDay)
		})
	})
}

func printLock(depositor, asset string, lockTime, unlockTime int64, rate uint64) {
	PrintKeyValue("Depositor", depositor)
	PrintKeyValue("Asset", asset)
	PrintKeyValue("Locked at", formatUnix(lockTime))
	PrintKeyValue("Unlocks at", formatUnix(unlockTime))
	PrintKeyValue("Fee per day", formatAmount(rate))
}
