package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/shipshift/quorum/model/multisig"
)

func InsertPendingAction(action *multisig.PendingAction) func(*badger.Txn) error {
	return insert(makePrefix(codePendingAction, action.ActionID), action)
}

func RetrievePendingAction(actionID string, action *multisig.PendingAction) func(*badger.Txn) error {
	return retrieve(makePrefix(codePendingAction, actionID), action)
}

func UpdatePendingAction(action *multisig.PendingAction) func(*badger.Txn) error {
	return update(makePrefix(codePendingAction, action.ActionID), action)
}

// TraversePendingActions visits every stored action. The handle function is
// given a freshly decoded action on each call.
func TraversePendingActions(handle func(*multisig.PendingAction) error) func(*badger.Txn) error {
	return traverse(makePrefix(codePendingAction), func() (createFunc, handleFunc) {
		var action multisig.PendingAction
		create := func() interface{} {
			return &action
		}
		h := func() error {
			copied := action
			return handle(&copied)
		}
		return create, h
	})
}
