package module

import (
	"context"

	"github.com/shipshift/quorum/model/multisig"
)

// BroadcastClient submits a fully witnessed transaction to the ledger. The
// coordinator calls Submit at most once per action; retrying a broadcast
// against a UTXO-consuming ledger risks double spends, so retry decisions
// are left to humans.
type BroadcastClient interface {
	// Submit broadcasts the unsigned payload together with the recorded
	// witnesses, ordered by recording time. Returns the final transaction
	// id on success and multisig.BroadcastError on failure.
	Submit(ctx context.Context, unsignedPayload []byte, witnesses []*multisig.Witness) (string, error)

	// Accepted reports whether the transaction with the given derived id
	// was already accepted by the ledger. Used by crash recovery before
	// re-attempting a broadcast that may have gone through.
	Accepted(ctx context.Context, derivedTxID string) (bool, error)
}
