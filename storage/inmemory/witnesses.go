package inmemory

import (
	"sort"
	"sync"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/storage"
)

// Witnesses is a map-backed witness store keyed by (action, signer).
type Witnesses struct {
	sync.RWMutex
	witnesses map[string]map[string]*multisig.Witness // actionID -> signer -> witness
}

func NewWitnesses() *Witnesses {
	return &Witnesses{
		witnesses: make(map[string]map[string]*multisig.Witness),
	}
}

var _ storage.Witnesses = (*Witnesses)(nil)

func (w *Witnesses) Store(witness *multisig.Witness) error {
	w.Lock()
	defer w.Unlock()
	forAction, ok := w.witnesses[witness.ActionID]
	if !ok {
		forAction = make(map[string]*multisig.Witness)
		w.witnesses[witness.ActionID] = forAction
	}
	if _, ok := forAction[witness.Signer]; ok {
		return storage.ErrAlreadyExists
	}
	copied := *witness
	forAction[witness.Signer] = &copied
	return nil
}

func (w *Witnesses) ByAction(actionID string) ([]*multisig.Witness, error) {
	w.RLock()
	defer w.RUnlock()
	var witnesses []*multisig.Witness
	for _, witness := range w.witnesses[actionID] {
		copied := *witness
		witnesses = append(witnesses, &copied)
	}
	sort.Slice(witnesses, func(i, j int) bool {
		if witnesses[i].RecordedAt.Equal(witnesses[j].RecordedAt) {
			return witnesses[i].Signer < witnesses[j].Signer
		}
		return witnesses[i].RecordedAt.Before(witnesses[j].RecordedAt)
	})
	return witnesses, nil
}

func (w *Witnesses) Exists(actionID string, signer string) (bool, error) {
	w.RLock()
	defer w.RUnlock()
	_, ok := w.witnesses[actionID][signer]
	return ok, nil
}

func (w *Witnesses) CountByAction(actionID string) (uint, error) {
	w.RLock()
	defer w.RUnlock()
	return uint(len(w.witnesses[actionID])), nil
}
