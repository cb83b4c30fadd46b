package inmemory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/storage"
	"github.com/shipshift/quorum/storage/inmemory"
	"github.com/shipshift/quorum/utils/unittest"
)

// the in-memory stores back the coordinator tests, so they must enforce
// the same contracts as the badger implementations

func TestActionsContract(t *testing.T) {
	store := inmemory.NewPendingActions()

	action := unittest.ActionFixture()
	require.NoError(t, store.Store(action))
	assert.ErrorIs(t, store.Store(action), storage.ErrAlreadyExists)

	_, err := store.ByID("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.UpdateStatus(action.ActionID, multisig.StatusCollecting, multisig.StatusSubmitting, ""))
	err = store.UpdateStatus(action.ActionID, multisig.StatusCollecting, multisig.StatusSubmitting, "")
	assert.ErrorIs(t, err, storage.ErrDataMismatch)

	err = store.UpdateStatus(action.ActionID, multisig.StatusSubmitting, multisig.StatusCollecting, "")
	assert.ErrorIs(t, err, multisig.ErrInvalidTransition)

	// callers get snapshots, not aliases into the store
	snapshot, err := store.ByID(action.ActionID)
	require.NoError(t, err)
	snapshot.Status = multisig.StatusFailed
	fresh, err := store.ByID(action.ActionID)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusSubmitting, fresh.Status)
}

func TestWitnessesContract(t *testing.T) {
	store := inmemory.NewWitnesses()

	witness := unittest.WitnessFixture("tx1#0", "addr_x")
	require.NoError(t, store.Store(witness))
	assert.ErrorIs(t, store.Store(witness), storage.ErrAlreadyExists)

	exists, err := store.Exists("tx1#0", "addr_x")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := store.CountByAction("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, uint(1), count)

	count, err = store.CountByAction("other")
	require.NoError(t, err)
	assert.Equal(t, uint(0), count)
}
