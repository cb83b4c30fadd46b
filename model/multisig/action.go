package multisig

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// PendingAction is an on-chain action awaiting multi-party approval. The
// unsigned payload is opaque to this package; it is only carried, never
// inspected. RequiredSigners and Threshold are immutable after creation;
// only Status and FinalTxID change, and only through the status state
// machine.
type PendingAction struct {
	ActionID        string     `json:"actionId"`
	Kind            ActionKind `json:"kind"`
	UnsignedPayload []byte     `json:"unsignedPayload"`
	OutRef          string     `json:"outRef"`
	RequiredSigners []string   `json:"requiredSigners"`
	Threshold       uint       `json:"threshold"`
	Status          Status     `json:"status"`
	FinalTxID       string     `json:"finalTxId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// NewPendingAction validates the signer set and threshold and returns an
// action in the collecting state. The signer set must be non-empty and free
// of duplicates; the threshold must lie in [1, len(signers)].
func NewPendingAction(actionID string, kind ActionKind, payload []byte, outRef string, signers []string, threshold uint) (*PendingAction, error) {
	if actionID == "" {
		return nil, NewInvalidActionErrorf("action id must not be empty")
	}
	if len(payload) == 0 {
		return nil, NewInvalidActionErrorf("unsigned payload must not be empty")
	}
	seen := make(map[string]struct{}, len(signers))
	for _, signer := range signers {
		if signer == "" {
			return nil, NewInvalidActionErrorf("signer identity must not be empty")
		}
		if _, ok := seen[signer]; ok {
			return nil, NewInvalidActionErrorf("duplicate signer %s in required set", signer)
		}
		seen[signer] = struct{}{}
	}
	if threshold < 1 || threshold > uint(len(signers)) {
		return nil, InvalidThresholdError{Threshold: threshold, Signers: uint(len(signers))}
	}
	action := &PendingAction{
		ActionID:        actionID,
		Kind:            kind,
		UnsignedPayload: payload,
		OutRef:          outRef,
		RequiredSigners: signers,
		Threshold:       threshold,
		Status:          StatusCollecting,
		CreatedAt:       time.Now().UTC(),
	}
	return action, nil
}

// HasSigner reports whether the given identity belongs to the required
// signer set.
func (a *PendingAction) HasSigner(signer string) bool {
	for _, s := range a.RequiredSigners {
		if s == signer {
			return true
		}
	}
	return false
}

// DerivedTxID is the transaction id implied by the unsigned payload. It is
// stable across restarts and is used by crash recovery to ask the ledger
// whether a broadcast already went through.
func (a *PendingAction) DerivedTxID() string {
	sum := sha256.Sum256(a.UnsignedPayload)
	return hex.EncodeToString(sum[:])
}
