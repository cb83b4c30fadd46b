package multisig

import "time"

// Witness is one signer's approval over an action's unsigned payload. The
// signed payload is an opaque wallet witness; it is carried and counted,
// never parsed. A witness is immutable once recorded and at most one exists
// per (action, signer) pair.
type Witness struct {
	ID            string    `json:"id"`
	ActionID      string    `json:"actionId"`
	Signer        string    `json:"signer"`
	SignedPayload []byte    `json:"signedPayload"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// WitnessOutcome reports the result of an accepted witness submission.
// QuorumReached is true only for the single submission that crossed the
// threshold and triggered broadcast.
type WitnessOutcome struct {
	WitnessID     string `json:"witnessId"`
	QuorumReached bool   `json:"quorumReached"`
	CurrentCount  uint   `json:"currentCount"`
	Threshold     uint   `json:"threshold"`
}
