package storage

import (
	"github.com/shipshift/quorum/model/multisig"
)

// Witnesses stores individual signed witnesses keyed by (action, signer).
// Witnesses are immutable once stored; a second write for the same pair is
// rejected, never replaced, so a signer cannot retract and re-sign.
type Witnesses interface {

	// Store persists a new witness.
	// Error returns:
	//   - storage.ErrAlreadyExists if a witness by the same signer already
	//     exists for the action
	Store(witness *multisig.Witness) error

	// ByAction returns all witnesses recorded for the action, ordered by
	// RecordedAt ascending (ties broken by signer) so that signature
	// aggregation is reproducible.
	ByAction(actionID string) ([]*multisig.Witness, error)

	// Exists reports whether the signer already witnessed the action.
	Exists(actionID string, signer string) (bool, error)

	// CountByAction returns the number of witnesses recorded for the action.
	CountByAction(actionID string) (uint, error)
}
