package vault

import (
	"fmt"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

// payloadDomain prefixes every signed payload so signatures cannot be
// reused by another protocol or protocol version.
const payloadDomain = "assetvault/v1"

// InitializePayload is the message an authority signs to create the ledger.
func InitializePayload(authority crypto.Address) []byte {
	return fmt.Appendf(nil, "%s:initialize:%s", payloadDomain, authority)
}

// LockPayload is the message a depositor signs to lock asset for duration seconds.
func LockPayload(depositor, asset crypto.Address, duration int64) []byte {
	return fmt.Appendf(nil, "%s:lock:%s:%s:%d", payloadDomain, depositor, asset, duration)
}

// UnlockPayload is the message a depositor signs to release asset. It is
// bound to the lock's lock_time so it only releases that one hold.
func UnlockPayload(depositor, asset crypto.Address, lockTime int64) []byte {
	return fmt.Appendf(nil, "%s:unlock:%s:%s:%d", payloadDomain, depositor, asset, lockTime)
}

// WithdrawPayload is the message the authority signs to withdraw amount.
func WithdrawPayload(authority crypto.Address, amount uint64) []byte {
	return fmt.Appendf(nil, "%s:withdraw:%s:%d", payloadDomain, authority, amount)
}
