package module

import (
	"context"

	"github.com/shipshift/quorum/model/multisig"
)

// UnsignedTx is the product of the external transaction builder: an opaque
// unsigned transaction payload plus the stable output reference that
// identifies it. The core never decodes the payload.
type UnsignedTx struct {
	Payload []byte
	Ref     string
}

// TransactionBuilder turns typed action parameters into an unsigned
// transaction. Implemented by an off-core service; a failure surfaces as
// multisig.BuildError and always happens before any state is persisted.
type TransactionBuilder interface {
	Build(ctx context.Context, params multisig.ActionParams) (*UnsignedTx, error)
}
