// Package signer provides Signer capability adapters. Wallets sign in the
// user's session (browser extension, hardware device); the service side
// only ever sees the finished witness bytes, which this package wraps as a
// per-call capability.
package signer

import (
	"context"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module"
)

// PreSigned is a Signer capability carrying a witness that was already
// produced by the signer's wallet. Each submission gets its own instance;
// there is no shared wallet handle.
type PreSigned struct {
	signer        string
	signedPayload []byte
}

func NewPreSigned(signer string, signedPayload []byte) (*PreSigned, error) {
	if len(signedPayload) == 0 {
		return nil, multisig.NewSigningErrorf(signer, "witness payload is empty")
	}
	return &PreSigned{signer: signer, signedPayload: signedPayload}, nil
}

var _ module.Signer = (*PreSigned)(nil)

func (p *PreSigned) Sign(ctx context.Context, _ []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, multisig.NewSigningErrorf(p.signer, "signing cancelled: %v", err)
	}
	return p.signedPayload, nil
}
