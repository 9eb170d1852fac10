package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

// withBackend opens the configured backend, runs fn and closes it.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b backend) error) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, b)
}

// currentIdentity returns the identity of the configured keyfile without
// decrypting it.
func currentIdentity() (crypto.Address, error) {
	kf, err := crypto.ReadKeyfile(getKeyPath())
	if err != nil {
		return crypto.Address{}, fmt.Errorf("no signing key at %s, run 'avault keygen' first", getKeyPath())
	}
	return kf.Identity, nil
}

// identityOrSelf parses s, or falls back to the keyfile identity when s is empty.
func identityOrSelf(s string) (crypto.Address, error) {
	if s == "" {
		return currentIdentity()
	}
	return parseAddress("identity", s)
}

func parseAddress(what, s string) (crypto.Address, error) {
	a, err := crypto.ParseAddress(s)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return a, nil
}

// formatUnix renders a unix timestamp in local time.
func formatUnix(sec int64) string {
	return time.Unix(sec, 0).Local().Format(time.RFC3339)
}

// formatSeconds renders a second count as a duration.
func formatSeconds(sec int64) string {
	return (time.Duration(sec) * time.Second).String()
}
