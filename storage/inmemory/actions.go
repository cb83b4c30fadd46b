package inmemory

import (
	"fmt"
	"sync"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/storage"
)

// PendingActions is a map-backed action registry. It enforces the same
// contracts as the badger implementation and backs the coordinator tests.
type PendingActions struct {
	sync.RWMutex
	actions map[string]*multisig.PendingAction
}

func NewPendingActions() *PendingActions {
	return &PendingActions{
		actions: make(map[string]*multisig.PendingAction),
	}
}

var _ storage.PendingActions = (*PendingActions)(nil)

func (p *PendingActions) Store(action *multisig.PendingAction) error {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.actions[action.ActionID]; ok {
		return storage.ErrAlreadyExists
	}
	copied := *action
	p.actions[action.ActionID] = &copied
	return nil
}

func (p *PendingActions) ByID(actionID string) (*multisig.PendingAction, error) {
	p.RLock()
	defer p.RUnlock()
	action, ok := p.actions[actionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *action
	return &copied, nil
}

func (p *PendingActions) UpdateStatus(actionID string, expected, next multisig.Status, finalTxID string) error {
	if !expected.ValidTransition(next) {
		return fmt.Errorf("cannot move action %s from %s to %s: %w",
			actionID, expected, next, multisig.ErrInvalidTransition)
	}
	if finalTxID != "" && next != multisig.StatusFinalized {
		return fmt.Errorf("final tx id only allowed on finalization: %w", multisig.ErrInvalidTransition)
	}
	p.Lock()
	defer p.Unlock()
	action, ok := p.actions[actionID]
	if !ok {
		return storage.ErrNotFound
	}
	if action.Status != expected {
		return fmt.Errorf("action %s is %s, expected %s: %w",
			actionID, action.Status, expected, storage.ErrDataMismatch)
	}
	action.Status = next
	action.FinalTxID = finalTxID
	return nil
}

func (p *PendingActions) ByStatus(status multisig.Status) ([]*multisig.PendingAction, error) {
	p.RLock()
	defer p.RUnlock()
	var actions []*multisig.PendingAction
	for _, action := range p.actions {
		if action.Status == status {
			copied := *action
			actions = append(actions, &copied)
		}
	}
	return actions, nil
}
