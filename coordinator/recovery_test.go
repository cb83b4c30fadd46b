package coordinator_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipshift/quorum/model/multisig"
)

// stuckAction plants an action that crashed mid-submission: quorum was
// reached, the status moved to submitting, but no broadcast outcome was
// ever recorded.
func (h *harness) stuckAction(t *testing.T) *multisig.PendingAction {
	action, err := multisig.NewPendingAction(
		"tx9#0", multisig.ActionDeliverySettlement, []byte("stuck-cbor"), "tx9#0", []string{"addr_x"}, 1)
	require.NoError(t, err)
	require.NoError(t, h.actions.Store(action))
	require.NoError(t, h.witnesses.Store(&multisig.Witness{
		ID:            uuid.New().String(),
		ActionID:      action.ActionID,
		Signer:        "addr_x",
		SignedPayload: []byte("wit-x"),
		RecordedAt:    time.Now().UTC(),
	}))
	require.NoError(t, h.actions.UpdateStatus(
		action.ActionID, multisig.StatusCollecting, multisig.StatusSubmitting, ""))
	return action
}

func TestRecoverAlreadyAccepted(t *testing.T) {
	h := newHarness()
	action := h.stuckAction(t)
	h.broadcast.accepted = true

	err := h.coord.RecoverInFlight(context.Background())
	require.NoError(t, err)

	status, err := h.coord.GetStatus(action.ActionID)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFinalized, status.Status)
	assert.Equal(t, action.DerivedTxID(), status.FinalTxID)

	// the transaction was on the ledger already; no second broadcast
	assert.Equal(t, 0, h.broadcast.submitCount())
}

func TestRecoverRebroadcasts(t *testing.T) {
	h := newHarness()
	action := h.stuckAction(t)
	h.broadcast.accepted = false

	err := h.coord.RecoverInFlight(context.Background())
	require.NoError(t, err)

	status, err := h.coord.GetStatus(action.ActionID)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFinalized, status.Status)
	assert.Equal(t, "final-tx-id", status.FinalTxID)
	assert.Equal(t, 1, h.broadcast.submitCount())
}

func TestRecoverRebroadcastFailureFailsAction(t *testing.T) {
	h := newHarness()
	action := h.stuckAction(t)
	h.broadcast.accepted = false
	h.broadcast.submitErr = fmt.Errorf("mempool rejected transaction")

	// a failed re-broadcast is the action's terminal outcome, not a
	// recovery error
	err := h.coord.RecoverInFlight(context.Background())
	require.NoError(t, err)

	status, err := h.coord.GetStatus(action.ActionID)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFailed, status.Status)
	assert.Empty(t, status.FinalTxID)
}

func TestRecoverAcceptanceQueryFailureLeavesSubmitting(t *testing.T) {
	h := newHarness()
	action := h.stuckAction(t)
	h.broadcast.acceptedErr = fmt.Errorf("indexer unavailable")

	err := h.coord.RecoverInFlight(context.Background())
	require.Error(t, err)

	status, err := h.coord.GetStatus(action.ActionID)
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusSubmitting, status.Status)
	assert.Equal(t, 0, h.broadcast.submitCount())
}

func TestRecoverNothingToDo(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x"}, 1)

	err := h.coord.RecoverInFlight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, h.broadcast.submitCount())
}
