package module

import (
	"context"
)

// Signer is the capability to witness an unsigned transaction payload on
// behalf of one signer. It is backed by the signer's wallet and injected
// per call; the core never holds private keys and never shares a signer
// capability across sessions.
type Signer interface {
	// Sign produces the signer's witness over the given unsigned payload.
	// The call may block on user interaction, so it must never be made
	// while holding coordination locks, and it honors ctx cancellation.
	// Error returns:
	//   - multisig.ErrSigningRejected if the user declined
	//   - multisig.SigningError on wallet or transport faults (including
	//     ctx timeout); no partial witness exists after either failure
	Sign(ctx context.Context, unsignedPayload []byte) ([]byte, error)
}
