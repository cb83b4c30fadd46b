package coordinator_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipshift/quorum/coordinator"
	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module/metrics"
	"github.com/shipshift/quorum/storage/inmemory"
)

// fixedSigner returns a canned witness or error, standing in for a wallet.
type fixedSigner struct {
	payload []byte
	err     error
}

func (s fixedSigner) Sign(context.Context, []byte) ([]byte, error) {
	return s.payload, s.err
}

// countingBroadcast records how often Submit was invoked.
type countingBroadcast struct {
	mu          sync.Mutex
	submits     int
	txID        string
	submitErr   error
	accepted    bool
	acceptedErr error
}

func (b *countingBroadcast) Submit(_ context.Context, _ []byte, _ []*multisig.Witness) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submits++
	if b.submitErr != nil {
		return "", b.submitErr
	}
	return b.txID, nil
}

func (b *countingBroadcast) Accepted(context.Context, string) (bool, error) {
	return b.accepted, b.acceptedErr
}

func (b *countingBroadcast) submitCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submits
}

type harness struct {
	actions   *inmemory.PendingActions
	witnesses *inmemory.Witnesses
	broadcast *countingBroadcast
	coord     *coordinator.Coordinator
}

func newHarness() *harness {
	actions := inmemory.NewPendingActions()
	witnesses := inmemory.NewWitnesses()
	broadcast := &countingBroadcast{txID: "final-tx-id"}
	coord := coordinator.New(zerolog.Nop(), metrics.NewNoopCollector(), actions, witnesses, broadcast)
	return &harness{
		actions:   actions,
		witnesses: witnesses,
		broadcast: broadcast,
		coord:     coord,
	}
}

func (h *harness) createAction(t *testing.T, signers []string, threshold uint) *multisig.PendingAction {
	action, err := h.coord.CreatePendingAction(
		"tx1#0", multisig.ActionColonyCreation, []byte("unsigned-cbor"), "tx1#0", signers, threshold)
	require.NoError(t, err)
	return action
}

func TestTwoOfThreeCollection(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x", "addr_y", "addr_z"}, 2)
	ctx := context.Background()

	// first witness: action stays collecting
	outcome, err := h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{payload: []byte("wit-x")})
	require.NoError(t, err)
	assert.False(t, outcome.QuorumReached)
	assert.Equal(t, uint(1), outcome.CurrentCount)
	assert.Equal(t, uint(2), outcome.Threshold)

	status, err := h.coord.GetStatus("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusCollecting, status.Status)

	// second witness crosses the threshold and finalizes
	outcome, err = h.coord.SubmitWitness(ctx, "tx1#0", "addr_y", fixedSigner{payload: []byte("wit-y")})
	require.NoError(t, err)
	assert.True(t, outcome.QuorumReached)
	assert.Equal(t, uint(2), outcome.CurrentCount)

	status, err = h.coord.GetStatus("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFinalized, status.Status)
	assert.Equal(t, "final-tx-id", status.FinalTxID)
	assert.Equal(t, 1, h.broadcast.submitCount())

	// signing window is closed for the third signer
	_, err = h.coord.SubmitWitness(ctx, "tx1#0", "addr_z", fixedSigner{payload: []byte("wit-z")})
	require.Error(t, err)
	assert.ErrorIs(t, err, multisig.ErrActionClosed)
	assert.Equal(t, 1, h.broadcast.submitCount())
}

func TestSingleSignerImmediateFinalization(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x"}, 1)

	outcome, err := h.coord.SubmitWitness(context.Background(), "tx1#0", "addr_x", fixedSigner{payload: []byte("wit-x")})
	require.NoError(t, err)
	assert.True(t, outcome.QuorumReached)

	status, err := h.coord.GetStatus("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFinalized, status.Status)
	assert.Equal(t, "final-tx-id", status.FinalTxID)
	assert.Equal(t, 1, h.broadcast.submitCount())
}

func TestConcurrentThresholdRace(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x", "addr_y"}, 2)
	ctx := context.Background()

	outcomes := make([]*multisig.WitnessOutcome, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i, signer := range []string{"addr_x", "addr_y"} {
		wg.Add(1)
		go func(i int, signer string) {
			defer wg.Done()
			outcomes[i], errs[i] = h.coord.SubmitWitness(ctx, "tx1#0", signer,
				fixedSigner{payload: []byte("wit-" + signer)})
		}(i, signer)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// exactly one submission observes the quorum and triggers broadcast
	quorums := 0
	for _, outcome := range outcomes {
		if outcome.QuorumReached {
			quorums++
		}
	}
	assert.Equal(t, 1, quorums)
	assert.Equal(t, 1, h.broadcast.submitCount())

	status, err := h.coord.GetStatus("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFinalized, status.Status)
}

func TestBroadcastFailureIsTerminal(t *testing.T) {
	h := newHarness()
	h.broadcast.submitErr = fmt.Errorf("mempool rejected transaction")
	h.createAction(t, []string{"addr_x"}, 1)
	ctx := context.Background()

	outcome, err := h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{payload: []byte("wit-x")})
	require.Error(t, err)
	assert.True(t, multisig.IsBroadcastError(err))
	// the witness itself was recorded before the broadcast
	require.NotNil(t, outcome)
	assert.True(t, outcome.QuorumReached)

	status, err := h.coord.GetStatus("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusFailed, status.Status)
	assert.Empty(t, status.FinalTxID)

	// a failed action never accepts witnesses again and is never re-broadcast
	_, err = h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{payload: []byte("wit-x2")})
	assert.ErrorIs(t, err, multisig.ErrActionClosed)
	assert.Equal(t, 1, h.broadcast.submitCount())
}

func TestInvalidThresholdPersistsNothing(t *testing.T) {
	h := newHarness()

	for _, threshold := range []uint{0, 3} {
		_, err := h.coord.CreatePendingAction(
			"tx1#0", multisig.ActionColonyCreation, []byte("unsigned-cbor"), "tx1#0",
			[]string{"addr_x", "addr_y"}, threshold)
		require.Error(t, err)
		assert.True(t, multisig.IsInvalidThresholdError(err))
	}

	_, err := h.coord.GetStatus("tx1#0")
	assert.ErrorIs(t, err, multisig.ErrActionNotFound)
}

func TestDuplicateAction(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x"}, 1)

	_, err := h.coord.CreatePendingAction(
		"tx1#0", multisig.ActionColonyCreation, []byte("other-cbor"), "tx1#0", []string{"addr_y"}, 1)
	assert.ErrorIs(t, err, multisig.ErrDuplicateAction)
}

func TestUnauthorizedSigner(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x", "addr_y"}, 2)

	_, err := h.coord.SubmitWitness(context.Background(), "tx1#0", "addr_w", fixedSigner{payload: []byte("wit-w")})
	require.Error(t, err)
	assert.ErrorIs(t, err, multisig.ErrUnauthorizedSigner)

	count, err := h.witnesses.CountByAction("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, uint(0), count)
}

func TestDuplicateWitnessKeepsOriginal(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x", "addr_y"}, 2)
	ctx := context.Background()

	_, err := h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{payload: []byte("original")})
	require.NoError(t, err)

	_, err = h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{payload: []byte("replacement")})
	require.Error(t, err)
	assert.ErrorIs(t, err, multisig.ErrDuplicateWitness)

	witnesses, err := h.witnesses.ByAction("tx1#0")
	require.NoError(t, err)
	require.Len(t, witnesses, 1)
	assert.Equal(t, []byte("original"), witnesses[0].SignedPayload)
}

func TestSigningFailuresLeaveNoTrace(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x"}, 1)
	ctx := context.Background()

	// user declined in the wallet
	_, err := h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{err: multisig.ErrSigningRejected})
	assert.ErrorIs(t, err, multisig.ErrSigningRejected)

	// wallet transport fault
	_, err = h.coord.SubmitWitness(ctx, "tx1#0", "addr_x",
		fixedSigner{err: multisig.NewSigningErrorf("addr_x", "extension unreachable")})
	assert.True(t, multisig.IsSigningError(err))

	// untyped faults are wrapped, not swallowed
	_, err = h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{err: errors.New("boom")})
	assert.True(t, multisig.IsSigningError(err))

	count, err := h.witnesses.CountByAction("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, uint(0), count)

	status, err := h.coord.GetStatus("tx1#0")
	require.NoError(t, err)
	assert.Equal(t, multisig.StatusCollecting, status.Status)

	// the same signer may retry after a failure
	outcome, err := h.coord.SubmitWitness(ctx, "tx1#0", "addr_x", fixedSigner{payload: []byte("wit-x")})
	require.NoError(t, err)
	assert.True(t, outcome.QuorumReached)
}

func TestActionNotFound(t *testing.T) {
	h := newHarness()

	_, err := h.coord.SubmitWitness(context.Background(), "missing", "addr_x", fixedSigner{payload: []byte("wit")})
	assert.ErrorIs(t, err, multisig.ErrActionNotFound)

	_, err = h.coord.GetStatus("missing")
	assert.ErrorIs(t, err, multisig.ErrActionNotFound)
}

func TestGetStatusStableAfterFinalization(t *testing.T) {
	h := newHarness()
	h.createAction(t, []string{"addr_x"}, 1)

	_, err := h.coord.SubmitWitness(context.Background(), "tx1#0", "addr_x", fixedSigner{payload: []byte("wit-x")})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		status, err := h.coord.GetStatus("tx1#0")
		require.NoError(t, err)
		assert.Equal(t, multisig.StatusFinalized, status.Status)
		assert.Equal(t, "final-tx-id", status.FinalTxID)
	}
}
