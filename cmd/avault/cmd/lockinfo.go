package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var lockDepositor string

var lockInfoCmd = &cobra.Command{
	Use:   "lock-info ASSET",
	Short: "Show a lock record",
	Long: `Show the lock record for an asset. The depositor defaults to your own
identity.

Examples:
  avault lock-info 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU
  avault lock-info ASSET --depositor 4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T`,
	Args: cobra.ExactArgs(1),
	RunE: runLockInfo,
}

var quoteCmd = &cobra.Command{
	Use:   "quote ASSET",
	Short: "Quote the fee to release a lock now",
	Long: `Show the fee a lock would be charged if released now and whether it can
be released yet. The depositor defaults to your own identity.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(lockInfoCmd)
	rootCmd.AddCommand(quoteCmd)
	for _, c := range []*cobra.Command{lockInfoCmd, quoteCmd} {
		c.Flags().StringVar(&lockDepositor, "depositor", "", "depositor identity (default: your key)")
	}
}

func runLockInfo(cmd *cobra.Command, args []string) error {
	asset, err := parseAddress("asset", args[0])
	if err != nil {
		return err
	}
	depositor, err := identityOrSelf(lockDepositor)
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		lock, err := b.GetLock(ctx, depositor, asset)
		if err != nil {
			return fmt.Errorf("failed to read lock: %w", err)
		}
		return render(lock, func() {
			printLock(lock.Depositor.String(), lock.Asset.String(), lock.LockTime, lock.UnlockTime, lock.FeeRatePerDay)
		})
	})
}

func runQuote(cmd *cobra.Command, args []string) error {
	asset, err := parseAddress("asset", args[0])
	if err != nil {
		return err
	}
	depositor, err := identityOrSelf(lockDepositor)
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		q, err := b.Quote(ctx, depositor, asset)
		if err != nil {
			return fmt.Errorf("failed to quote fee: %w", err)
		}
		return render(q, func() {
			PrintKeyValue("Held for", formatSeconds(q.ElapsedSeconds))
			PrintKeyValue("Days charged", fmt.Sprintf("%d", q.DaysHeld))
			PrintKeyValue("Fee", formatAmount(q.Fee))
			if q.Eligible {
				Success("Releasable now")
			} else {
				Info("Releasable in %s", formatSeconds(q.SecondsRemaining))
			}
		})
	})
}
