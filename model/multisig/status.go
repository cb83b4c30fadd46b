package multisig

// Status captures the lifecycle of a pending action. An action starts in
// StatusCollecting and moves monotonically towards one of the two terminal
// states. There is no way back to collecting; a failed action can only be
// superseded by building a fresh action under a new id.
type Status int

const (
	// StatusCollecting is the initial state; witnesses are being gathered.
	StatusCollecting Status = iota
	// StatusSubmitting means the threshold was reached and broadcast is
	// in flight. No further witnesses are accepted.
	StatusSubmitting
	// StatusFinalized means the transaction was accepted by the ledger.
	StatusFinalized
	// StatusFailed means broadcast failed; terminal, human-recoverable only
	// by creating a new action.
	StatusFailed
)

// String returns the canonical lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusCollecting:
		return "collecting"
	case StatusSubmitting:
		return "submitting"
	case StatusFinalized:
		return "finalized"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal returns true if no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusFailed
}

// ValidTransition checks whether moving from s to next is permitted by the
// action lifecycle.
func (s Status) ValidTransition(next Status) bool {
	switch s {
	case StatusCollecting:
		return next == StatusSubmitting
	case StatusSubmitting:
		return next == StatusFinalized || next == StatusFailed
	default:
		return false
	}
}
