package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"lukechampine.com/blake3"
)

// AddressSize is the length of an identity or asset address in bytes.
const AddressSize = 32

// lockKeyTag separates lock record keys from any other blake3 use.
const lockKeyTag = "nft-lock"

// ErrInvalidAddress is returned when a string is not a base58 encoded 32-byte address.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a depositor, an authority or an asset.
// Identities are ed25519 public keys; asset ids are arbitrary addresses.
type Address [AddressSize]byte

// ParseAddress decodes the base58 text form of an address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != AddressSize {
		return a, fmt.Errorf("%w: got %d bytes", ErrInvalidAddress, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error. Intended for tests
// and constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NewRandomAddress returns a fresh random address, used for new asset ids.
func NewRandomAddress() (Address, error) {
	var a Address
	if _, err := rand.Read(a[:]); err != nil {
		return a, fmt.Errorf("failed to generate address: %w", err)
	}
	return a, nil
}

// String returns the base58 text form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// LockKey derives the storage key of the lock record for (depositor, asset).
// It is a pure function of both addresses, so any party can compute it.
func LockKey(depositor, asset Address) string {
	h := blake3.New(32, nil)
	h.Write([]byte(lockKeyTag))
	h.Write(depositor[:])
	h.Write(asset[:])
	return hex.EncodeToString(h.Sum(nil))
}
