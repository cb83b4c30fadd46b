package storage

import (
	"github.com/shipshift/quorum/model/multisig"
)

// PendingActions is the registry of actions awaiting multi-party approval.
// Store is the only way an action enters the collecting state; afterwards
// only the status and final transaction id may change, through UpdateStatus.
type PendingActions interface {

	// Store persists a new pending action.
	// Error returns:
	//   - storage.ErrAlreadyExists if an action with the same id exists
	Store(action *multisig.PendingAction) error

	// ByID retrieves the action with the given id.
	// Error returns:
	//   - storage.ErrNotFound if no such action exists
	ByID(actionID string) (*multisig.PendingAction, error)

	// UpdateStatus transitions the action from the expected status to the
	// next one, atomically with respect to other UpdateStatus calls on the
	// same action. finalTxID is stored alongside the transition to the
	// finalized state and must be empty otherwise.
	// Error returns:
	//   - storage.ErrNotFound if no such action exists
	//   - storage.ErrDataMismatch if the current status differs from expected
	//   - multisig.ErrInvalidTransition if the lifecycle forbids the change
	UpdateStatus(actionID string, expected, next multisig.Status, finalTxID string) error

	// ByStatus returns all actions currently in the given status, in no
	// particular order. Used by crash recovery and status displays.
	ByStatus(status multisig.Status) ([]*multisig.PendingAction, error)
}
