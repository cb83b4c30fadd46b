// Package coordinator implements quorum collection for multi-signature
// actions: it records witnesses from independent signer sessions, detects
// when the approval threshold is crossed, and triggers broadcast of the
// fully witnessed transaction exactly once.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module"
	"github.com/shipshift/quorum/storage"
)

// rejection reasons reported to metrics
const (
	rejectNotFound     = "not_found"
	rejectClosed       = "closed"
	rejectUnauthorized = "unauthorized"
	rejectDuplicate    = "duplicate"
	rejectSigning      = "signing"
)

// Coordinator owns the write path to pending actions and witnesses. All
// status transitions for a given action are serialized through a per-action
// lock; the external sign call and the broadcast run outside the lock, so
// one signer's wallet prompt never blocks another signer, and the
// submitting status itself excludes duplicate broadcasts.
type Coordinator struct {
	log       zerolog.Logger
	metrics   module.MultisigMetrics
	actions   storage.PendingActions
	witnesses storage.Witnesses
	broadcast module.BroadcastClient
	locks     *actionLocks

	// recovering guards against overlapping recovery runs; recovery is
	// invoked once at startup but nothing stops an operator from
	// triggering it again.
	recovering atomic.Bool
}

func New(
	log zerolog.Logger,
	metrics module.MultisigMetrics,
	actions storage.PendingActions,
	witnesses storage.Witnesses,
	broadcast module.BroadcastClient,
) *Coordinator {
	return &Coordinator{
		log:       log.With().Str("component", "coordinator").Logger(),
		metrics:   metrics,
		actions:   actions,
		witnesses: witnesses,
		broadcast: broadcast,
		locks:     newActionLocks(),
	}
}

// CreatePendingAction registers a new action in the collecting state. This
// is the only way an action enters the registry.
// Error returns:
//   - multisig.InvalidThresholdError if the threshold is outside [1, |signers|]
//   - multisig.InvalidActionError on malformed inputs
//   - multisig.ErrDuplicateAction if the action id is already taken
func (c *Coordinator) CreatePendingAction(
	actionID string,
	kind multisig.ActionKind,
	unsignedPayload []byte,
	outRef string,
	requiredSigners []string,
	threshold uint,
) (*multisig.PendingAction, error) {

	action, err := multisig.NewPendingAction(actionID, kind, unsignedPayload, outRef, requiredSigners, threshold)
	if err != nil {
		return nil, err
	}

	err = c.actions.Store(action)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, fmt.Errorf("action %s: %w", actionID, multisig.ErrDuplicateAction)
	}
	if err != nil {
		return nil, fmt.Errorf("could not store action %s: %w", actionID, err)
	}

	c.metrics.ActionRegistered(kind.String())
	c.log.Info().
		Str("action_id", actionID).
		Str("kind", kind.String()).
		Int("signers", len(requiredSigners)).
		Uint("threshold", threshold).
		Msg("pending action registered")

	return action, nil
}

// GetStatus returns the current snapshot of the action. Readers tolerate
// stale snapshots; no locking is involved.
// Error returns:
//   - multisig.ErrActionNotFound if no such action exists
func (c *Coordinator) GetStatus(actionID string) (*multisig.PendingAction, error) {
	action, err := c.actions.ByID(actionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("action %s: %w", actionID, multisig.ErrActionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load action %s: %w", actionID, err)
	}
	return action, nil
}

// SubmitWitness obtains a witness from the given signer capability and
// records it. The submission that first brings the witness count to the
// threshold transitions the action to submitting and performs the
// broadcast; concurrent submissions racing at the boundary observe the
// transition and return normally.
//
// When broadcast fails, the witness has still been recorded: the returned
// outcome is valid and accompanies the multisig.BroadcastError.
//
// Error returns:
//   - multisig.ErrActionNotFound if no such action exists
//   - multisig.ErrActionClosed if the action left the collecting state
//   - multisig.ErrUnauthorizedSigner if the signer is not in the required set
//   - multisig.ErrDuplicateWitness if the signer already witnessed the action
//   - multisig.ErrSigningRejected / multisig.SigningError from the signer
//     capability; no witness is recorded in either case
//   - multisig.BroadcastError if this submission crossed the threshold and
//     the broadcast failed; the action ends up failed
func (c *Coordinator) SubmitWitness(ctx context.Context, actionID string, signerID string, capability module.Signer) (*multisig.WitnessOutcome, error) {

	action, err := c.checkSubmission(actionID, signerID)
	if err != nil {
		return nil, err
	}

	// the wallet prompt can block on user interaction indefinitely; it
	// must run before the per-action lock is taken
	signedPayload, err := capability.Sign(ctx, action.UnsignedPayload)
	if err != nil {
		c.metrics.WitnessRejected(rejectSigning)
		if errors.Is(err, multisig.ErrSigningRejected) || multisig.IsSigningError(err) {
			return nil, err
		}
		return nil, multisig.SigningError{Signer: signerID, Err: err}
	}

	outcome, crossed, err := c.recordWitness(actionID, signerID, signedPayload)
	if err != nil {
		return nil, err
	}

	c.metrics.WitnessAccepted()
	c.log.Info().
		Str("action_id", actionID).
		Str("signer", signerID).
		Uint("count", outcome.CurrentCount).
		Uint("threshold", outcome.Threshold).
		Bool("quorum", crossed).
		Msg("witness recorded")

	if !crossed {
		return outcome, nil
	}

	c.metrics.QuorumReached()
	outcome.QuorumReached = true

	err = c.submit(ctx, actionID)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// checkSubmission performs the cheap pre-checks before the wallet is asked
// to sign. They are repeated under the lock by recordWitness; failing fast
// here just avoids a pointless wallet prompt.
func (c *Coordinator) checkSubmission(actionID string, signerID string) (*multisig.PendingAction, error) {
	action, err := c.actions.ByID(actionID)
	if errors.Is(err, storage.ErrNotFound) {
		c.metrics.WitnessRejected(rejectNotFound)
		return nil, fmt.Errorf("action %s: %w", actionID, multisig.ErrActionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load action %s: %w", actionID, err)
	}

	if action.Status != multisig.StatusCollecting {
		c.metrics.WitnessRejected(rejectClosed)
		return nil, fmt.Errorf("action %s is %s: %w", actionID, action.Status, multisig.ErrActionClosed)
	}

	if !action.HasSigner(signerID) {
		c.metrics.WitnessRejected(rejectUnauthorized)
		return nil, fmt.Errorf("signer %s on action %s: %w", signerID, actionID, multisig.ErrUnauthorizedSigner)
	}

	exists, err := c.witnesses.Exists(actionID, signerID)
	if err != nil {
		return nil, fmt.Errorf("could not check witness: %w", err)
	}
	if exists {
		c.metrics.WitnessRejected(rejectDuplicate)
		return nil, fmt.Errorf("signer %s on action %s: %w", signerID, actionID, multisig.ErrDuplicateWitness)
	}

	return action, nil
}

// recordWitness persists the witness and evaluates the threshold under the
// per-action lock. It reports whether this submission crossed the
// threshold, which happens for exactly one submission per action: the
// transition to submitting is a compare-and-set on the stored status, so
// even a racing writer outside this process cannot trigger a second
// broadcast.
func (c *Coordinator) recordWitness(actionID string, signerID string, signedPayload []byte) (*multisig.WitnessOutcome, bool, error) {
	lock := c.locks.forAction(actionID)
	lock.Lock()
	defer lock.Unlock()

	// the action may have left collecting while the wallet prompt was open
	action, err := c.actions.ByID(actionID)
	if err != nil {
		return nil, false, fmt.Errorf("could not reload action %s: %w", actionID, err)
	}
	if action.Status != multisig.StatusCollecting {
		c.metrics.WitnessRejected(rejectClosed)
		return nil, false, fmt.Errorf("action %s is %s: %w", actionID, action.Status, multisig.ErrActionClosed)
	}

	witness := &multisig.Witness{
		ID:            uuid.New().String(),
		ActionID:      actionID,
		Signer:        signerID,
		SignedPayload: signedPayload,
		RecordedAt:    time.Now().UTC(),
	}

	err = c.witnesses.Store(witness)
	if errors.Is(err, storage.ErrAlreadyExists) {
		c.metrics.WitnessRejected(rejectDuplicate)
		return nil, false, fmt.Errorf("signer %s on action %s: %w", signerID, actionID, multisig.ErrDuplicateWitness)
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not store witness: %w", err)
	}

	count, err := c.witnesses.CountByAction(actionID)
	if err != nil {
		return nil, false, fmt.Errorf("could not count witnesses: %w", err)
	}

	outcome := &multisig.WitnessOutcome{
		WitnessID:    witness.ID,
		CurrentCount: count,
		Threshold:    action.Threshold,
	}

	if count < action.Threshold {
		return outcome, false, nil
	}

	err = c.actions.UpdateStatus(actionID, multisig.StatusCollecting, multisig.StatusSubmitting, "")
	if errors.Is(err, storage.ErrDataMismatch) {
		// someone else already moved the action out of collecting
		return outcome, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not mark action %s submitting: %w", actionID, err)
	}

	return outcome, true, nil
}

// submit broadcasts the fully witnessed transaction. The caller must have
// won the collecting→submitting transition; the submitting status keeps
// every other path away from the broadcast client.
func (c *Coordinator) submit(ctx context.Context, actionID string) error {
	action, err := c.actions.ByID(actionID)
	if err != nil {
		return fmt.Errorf("could not load action %s for submission: %w", actionID, err)
	}

	witnesses, err := c.witnesses.ByAction(actionID)
	if err != nil {
		return fmt.Errorf("could not gather witnesses for %s: %w", actionID, err)
	}

	txID, err := c.broadcast.Submit(ctx, action.UnsignedPayload, witnesses)
	if err != nil {
		c.metrics.BroadcastFinished(false)
		c.log.Error().Err(err).Str("action_id", actionID).Msg("broadcast failed, action terminal")

		updateErr := c.actions.UpdateStatus(actionID, multisig.StatusSubmitting, multisig.StatusFailed, "")
		if updateErr != nil {
			return fmt.Errorf("could not fail action %s after broadcast error %v: %w", actionID, err, updateErr)
		}
		return multisig.BroadcastError{ActionID: actionID, Err: err}
	}

	err = c.actions.UpdateStatus(actionID, multisig.StatusSubmitting, multisig.StatusFinalized, txID)
	if err != nil {
		return fmt.Errorf("could not finalize action %s: %w", actionID, err)
	}

	c.metrics.BroadcastFinished(true)
	c.log.Info().Str("action_id", actionID).Str("tx_id", txID).Msg("action finalized")

	return nil
}
