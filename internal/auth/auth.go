// Package auth verifies signed, replay-protected credentials.
//
// A credential proves that its identity signed a specific operation payload
// together with a nonce. Nonces are strictly increasing per identity and are
// consumed inside the operation's store transaction, so a failed operation
// does not burn its nonce and a committed one can never be replayed.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

var (
	// ErrInvalidSignature is returned when the signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrStaleNonce is returned when the nonce is not above the last accepted one.
	ErrStaleNonce = errors.New("stale nonce")
)

// Credential is an identity's signature over one operation.
type Credential struct {
	Identity  crypto.Address `json:"identity"`
	Nonce     uint64         `json:"nonce"`
	Signature []byte         `json:"signature"`
}

// Message returns the exact bytes signed for payload and nonce.
func Message(payload []byte, nonce uint64) []byte {
	msg := make([]byte, 0, len(payload)+21)
	msg = append(msg, payload...)
	msg = append(msg, '#')
	return strconv.AppendUint(msg, nonce, 10)
}

// Sign produces a credential for payload. A zero nonce is replaced by the
// current unix time in nanoseconds, which keeps nonces increasing across
// process restarts.
func Sign(kp *crypto.Keypair, payload []byte, nonce uint64) Credential {
	if nonce == 0 {
		nonce = uint64(time.Now().UnixNano())
	}
	return Credential{
		Identity:  kp.Identity(),
		Nonce:     nonce,
		Signature: kp.Sign(Message(payload, nonce)),
	}
}

// Verify checks the credential's signature over payload and consumes its
// nonce in tx.
func Verify(tx store.Tx, cred Credential, payload []byte) error {
	if err := crypto.Verify(cred.Identity, Message(payload, cred.Nonce), cred.Signature); err != nil {
		return ErrInvalidSignature
	}

	last, err := tx.LastNonce(cred.Identity)
	if err != nil {
		return fmt.Errorf("read nonce: %w", err)
	}
	if cred.Nonce <= last {
		return fmt.Errorf("%w: %d <= %d", ErrStaleNonce, cred.Nonce, last)
	}
	return tx.SetNonce(cred.Identity, cred.Nonce)
}
