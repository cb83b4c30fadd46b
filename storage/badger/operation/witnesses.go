package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/shipshift/quorum/model/multisig"
)

func InsertWitness(witness *multisig.Witness) func(*badger.Txn) error {
	return insert(makePrefix(codeWitness, witness.ActionID, witness.Signer), witness)
}

func CheckWitness(actionID string, signer string, exists *bool) func(*badger.Txn) error {
	return check(makePrefix(codeWitness, actionID, signer), exists)
}

// TraverseWitnesses visits every witness recorded for the given action, in
// lexicographic signer order. Callers that need recording order must sort.
func TraverseWitnesses(actionID string, handle func(*multisig.Witness) error) func(*badger.Txn) error {
	// the trailing separator keeps "tx1" from matching witnesses of "tx10"
	prefix := append(makePrefix(codeWitness, actionID), 0x00)
	return traverse(prefix, func() (createFunc, handleFunc) {
		var witness multisig.Witness
		create := func() interface{} {
			return &witness
		}
		h := func() error {
			copied := witness
			return handle(&copied)
		}
		return create, h
	})
}
