package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fundAccount string

var fundCmd = &cobra.Command{
	Use:   "fund AMOUNT",
	Short: "Credit an account from the development faucet",
	Long: `Credit an account with fee funds from outside the system. Only works when
the faucet is enabled (allow_faucet, on by default for local vaults).

Examples:
  avault fund 10
  avault fund 2.5 --account 4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T`,
	Args: cobra.ExactArgs(1),
	RunE: runFund,
}

var balanceCmd = &cobra.Command{
	Use:   "balance [ACCOUNT]",
	Short: "Show an account's balance and held assets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBalance,
}

func init() {
	rootCmd.AddCommand(fundCmd)
	rootCmd.AddCommand(balanceCmd)
	fundCmd.Flags().StringVar(&fundAccount, "account", "", "account to credit (default: your key)")
}

func runFund(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	account, err := identityOrSelf(fundAccount)
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		balance, err := b.Fund(ctx, account, amount)
		if err != nil {
			return fmt.Errorf("failed to fund account: %w", err)
		}
		return render(map[string]any{"account": account, "balance": balance}, func() {
			Success("Credited %s", formatAmount(amount))
			PrintKeyValue("Balance", formatAmount(balance))
		})
	})
}

func runBalance(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	id, err := identityOrSelf(arg)
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		info, err := b.Account(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read account: %w", err)
		}
		return render(info, func() {
			PrintKeyValue("Account", string(info.Account))
			PrintKeyValue("Balance", formatAmount(info.Balance))
			if len(info.Holdings) == 0 {
				fmt.Fprintln(stdout, Dim("No assets held"))
				return
			}
			PrintTableHeader("ASSET")
			for _, a := range info.Holdings {
				fmt.Fprintln(stdout, a.String())
			}
		})
	})
}
