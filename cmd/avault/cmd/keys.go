package cmd

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

const passphraseEnv = "AVAULT_PASSPHRASE"

// loadSigner reads and decrypts the configured keyfile.
// It tries AVAULT_PASSPHRASE first (for CI), then prompts interactively.
func loadSigner() (*crypto.Keypair, error) {
	path := getKeyPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no signing key at %s, run 'avault keygen' first", path)
	}

	passphrase := os.Getenv(passphraseEnv)
	if passphrase == "" {
		var err error
		passphrase, err = promptPassphrase("Enter key passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
	}

	kp, err := crypto.LoadKeypair(path, []byte(passphrase))
	if errors.Is(err, crypto.ErrDecryptionFailed) {
		return nil, errors.New("wrong passphrase")
	}
	return kp, err
}

// promptPassphrase reads a passphrase from the terminal with echo disabled.
func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// newPassphrase returns AVAULT_PASSPHRASE, or prompts twice and ensures the
// entries match.
func newPassphrase() (string, error) {
	if pass := os.Getenv(passphraseEnv); pass != "" {
		return pass, nil
	}
	pass, err := promptPassphrase("Enter passphrase: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	confirm, err := promptPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passphrases do not match")
	}
	return pass, nil
}
