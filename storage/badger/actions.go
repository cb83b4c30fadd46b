package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/storage"
	"github.com/shipshift/quorum/storage/badger/operation"
)

// PendingActions implements the action registry on top of badger. Status
// updates run inside a single badger transaction, so the read-check-write
// of the compare-and-set is atomic.
type PendingActions struct {
	db *badger.DB
}

func NewPendingActions(db *badger.DB) *PendingActions {
	return &PendingActions{db: db}
}

var _ storage.PendingActions = (*PendingActions)(nil)

func (p *PendingActions) Store(action *multisig.PendingAction) error {
	return p.db.Update(operation.InsertPendingAction(action))
}

func (p *PendingActions) ByID(actionID string) (*multisig.PendingAction, error) {
	var action multisig.PendingAction
	err := p.db.View(operation.RetrievePendingAction(actionID, &action))
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (p *PendingActions) UpdateStatus(actionID string, expected, next multisig.Status, finalTxID string) error {
	if !expected.ValidTransition(next) {
		return fmt.Errorf("cannot move action %s from %s to %s: %w",
			actionID, expected, next, multisig.ErrInvalidTransition)
	}
	if finalTxID != "" && next != multisig.StatusFinalized {
		return fmt.Errorf("final tx id only allowed on finalization: %w", multisig.ErrInvalidTransition)
	}
	return p.db.Update(func(tx *badger.Txn) error {
		var action multisig.PendingAction
		err := operation.RetrievePendingAction(actionID, &action)(tx)
		if err != nil {
			return err
		}
		if action.Status != expected {
			return fmt.Errorf("action %s is %s, expected %s: %w",
				actionID, action.Status, expected, storage.ErrDataMismatch)
		}
		action.Status = next
		action.FinalTxID = finalTxID
		return operation.UpdatePendingAction(&action)(tx)
	})
}

func (p *PendingActions) ByStatus(status multisig.Status) ([]*multisig.PendingAction, error) {
	var actions []*multisig.PendingAction
	err := p.db.View(operation.TraversePendingActions(func(action *multisig.PendingAction) error {
		if action.Status == status {
			actions = append(actions, action)
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("could not traverse actions: %w", err)
	}
	return actions, nil
}
