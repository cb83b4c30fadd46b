package unittest

import (
	"time"

	"github.com/google/uuid"

	"github.com/shipshift/quorum/model/multisig"
)

func ActionFixture(opts ...func(*multisig.PendingAction)) *multisig.PendingAction {
	action := &multisig.PendingAction{
		ActionID:        "tx1#0",
		Kind:            multisig.ActionColonyCreation,
		UnsignedPayload: []byte("unsigned-cbor"),
		OutRef:          "tx1#0",
		RequiredSigners: []string{"addr_x", "addr_y", "addr_z"},
		Threshold:       2,
		Status:          multisig.StatusCollecting,
		CreatedAt:       time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(action)
	}
	return action
}

func WithActionID(actionID string) func(*multisig.PendingAction) {
	return func(action *multisig.PendingAction) {
		action.ActionID = actionID
		action.OutRef = actionID
	}
}

func WitnessFixture(actionID string, signer string, opts ...func(*multisig.Witness)) *multisig.Witness {
	witness := &multisig.Witness{
		ID:            uuid.New().String(),
		ActionID:      actionID,
		Signer:        signer,
		SignedPayload: []byte("witness-" + signer),
		RecordedAt:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(witness)
	}
	return witness
}

func WithRecordedAt(at time.Time) func(*multisig.Witness) {
	return func(witness *multisig.Witness) {
		witness.RecordedAt = at
	}
}
