package coordinator

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/shipshift/quorum/model/multisig"
)

// RecoverInFlight resolves actions that were stuck in the submitting state
// by a crash between the threshold transition and the end of broadcast.
// For each such action, the ledger is first asked whether the derived
// transaction id was already accepted; only if it was not is the broadcast
// attempted again, once. A broadcast failure during recovery moves the
// action to failed, which is its regular terminal outcome, not a recovery
// error.
func (c *Coordinator) RecoverInFlight(ctx context.Context) error {
	if !c.recovering.CompareAndSwap(false, true) {
		return fmt.Errorf("recovery already in progress")
	}
	defer c.recovering.Store(false)

	stuck, err := c.actions.ByStatus(multisig.StatusSubmitting)
	if err != nil {
		return fmt.Errorf("could not list in-flight actions: %w", err)
	}
	if len(stuck) == 0 {
		return nil
	}

	c.log.Info().Int("actions", len(stuck)).Msg("recovering in-flight actions")

	var result *multierror.Error
	for _, action := range stuck {
		err := c.recoverAction(ctx, action)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("action %s: %w", action.ActionID, err))
		}
	}
	return result.ErrorOrNil()
}

func (c *Coordinator) recoverAction(ctx context.Context, action *multisig.PendingAction) error {
	lock := c.locks.forAction(action.ActionID)
	lock.Lock()
	defer lock.Unlock()

	derived := action.DerivedTxID()
	accepted, err := c.broadcast.Accepted(ctx, derived)
	if err != nil {
		// leave the action in submitting; a later recovery run retries
		return fmt.Errorf("could not confirm ledger acceptance: %w", err)
	}

	if accepted {
		err = c.actions.UpdateStatus(action.ActionID, multisig.StatusSubmitting, multisig.StatusFinalized, derived)
		if err != nil {
			return fmt.Errorf("could not finalize recovered action: %w", err)
		}
		c.log.Info().Str("action_id", action.ActionID).Str("tx_id", derived).
			Msg("in-flight action was already accepted, finalized")
		return nil
	}

	err = c.submit(ctx, action.ActionID)
	if multisig.IsBroadcastError(err) {
		c.log.Warn().Err(err).Str("action_id", action.ActionID).
			Msg("recovered action failed on re-broadcast")
		return nil
	}
	return err
}
