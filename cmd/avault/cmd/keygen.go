package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

var keygenForce bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Create a signing key",
	Long: `Create an Ed25519 signing key and store it encrypted under a passphrase.

The key's public half is your identity: the account that holds assets,
pays fees and, for the vault authority, receives withdrawals.

Examples:
  avault keygen
  avault keygen --key ./authority.json`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "overwrite an existing keyfile")
}

func runKeygen(_ *cobra.Command, _ []string) error {
	path := getKeyPath()
	if _, err := os.Stat(path); err == nil && !keygenForce {
		return fmt.Errorf("keyfile already exists at %s (use --force to replace it)", path)
	}

	passphrase, err := newPassphrase()
	if err != nil {
		return err
	}

	kp, err := crypto.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	if err := crypto.SaveKeypair(path, kp, []byte(passphrase)); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}

	return render(map[string]any{"identity": kp.Identity(), "keyfile": path}, func() {
		Success("Key written to %s", path)
		PrintKeyValue("Identity", kp.Identity().String())
	})
}
