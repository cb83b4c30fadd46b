package badger

import (
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v2"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/storage"
	"github.com/shipshift/quorum/storage/badger/operation"
)

// Witnesses implements the witness store on top of badger. Keys are
// composed of action id and signer, so a duplicate write by the same signer
// is rejected at the key level.
type Witnesses struct {
	db *badger.DB
}

func NewWitnesses(db *badger.DB) *Witnesses {
	return &Witnesses{db: db}
}

var _ storage.Witnesses = (*Witnesses)(nil)

func (w *Witnesses) Store(witness *multisig.Witness) error {
	return w.db.Update(operation.InsertWitness(witness))
}

func (w *Witnesses) ByAction(actionID string) ([]*multisig.Witness, error) {
	var witnesses []*multisig.Witness
	err := w.db.View(operation.TraverseWitnesses(actionID, func(witness *multisig.Witness) error {
		witnesses = append(witnesses, witness)
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("could not traverse witnesses: %w", err)
	}
	// badger iterates in signer order; aggregation wants recording order
	sort.Slice(witnesses, func(i, j int) bool {
		if witnesses[i].RecordedAt.Equal(witnesses[j].RecordedAt) {
			return witnesses[i].Signer < witnesses[j].Signer
		}
		return witnesses[i].RecordedAt.Before(witnesses[j].RecordedAt)
	})
	return witnesses, nil
}

func (w *Witnesses) Exists(actionID string, signer string) (bool, error) {
	var exists bool
	err := w.db.View(operation.CheckWitness(actionID, signer, &exists))
	if err != nil {
		return false, fmt.Errorf("could not check witness: %w", err)
	}
	return exists, nil
}

func (w *Witnesses) CountByAction(actionID string) (uint, error) {
	var count uint
	err := w.db.View(operation.TraverseWitnesses(actionID, func(*multisig.Witness) error {
		count++
		return nil
	}))
	if err != nil {
		return 0, fmt.Errorf("could not count witnesses: %w", err)
	}
	return count, nil
}
