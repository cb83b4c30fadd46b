package module

// MultisigMetrics encapsulates the metrics collectors for the witness
// collection core.
type MultisigMetrics interface {
	// ActionRegistered is called when a new pending action enters the
	// collecting state.
	ActionRegistered(kind string)

	// WitnessAccepted is called for every witness that was persisted.
	WitnessAccepted()

	// WitnessRejected is called when a witness submission is refused,
	// with the reason label (unauthorized, duplicate, closed, ...).
	WitnessRejected(reason string)

	// QuorumReached is called once per action, by the submission that
	// crossed the threshold.
	QuorumReached()

	// BroadcastFinished records the outcome of a broadcast attempt.
	BroadcastFinished(success bool)
}
