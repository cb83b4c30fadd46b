// Package orchestrator ties the transaction builder and the quorum
// coordinator together for the supported action kinds: it turns a domain
// intent into an unsigned transaction and registers it for witness
// collection.
package orchestrator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module"
)

var errInvalidRef = errors.New("builder returned no stable transaction reference")

// Registry is the slice of the coordinator the orchestrator drives.
type Registry interface {
	CreatePendingAction(
		actionID string,
		kind multisig.ActionKind,
		unsignedPayload []byte,
		outRef string,
		requiredSigners []string,
		threshold uint,
	) (*multisig.PendingAction, error)
}

type Orchestrator struct {
	log      zerolog.Logger
	builder  module.TransactionBuilder
	registry Registry
}

func New(log zerolog.Logger, builder module.TransactionBuilder, registry Registry) *Orchestrator {
	return &Orchestrator{
		log:      log.With().Str("component", "orchestrator").Logger(),
		builder:  builder,
		registry: registry,
	}
}

// CreateColony builds the colony creation transaction and registers it for
// approval by the colony creators. A build failure aborts before any state
// is persisted.
func (o *Orchestrator) CreateColony(ctx context.Context, params multisig.ColonyParams) (*multisig.PendingAction, error) {
	err := params.Validate()
	if err != nil {
		return nil, multisig.NewInvalidActionErrorf("invalid colony parameters: %v", err)
	}
	return o.register(ctx, params, params.Creators, params.MinimumSigners)
}

// SettleDelivery builds the delivery settlement transaction and registers
// it for approval by the colony owners.
func (o *Orchestrator) SettleDelivery(ctx context.Context, params multisig.DeliveryParams) (*multisig.PendingAction, error) {
	err := params.Validate()
	if err != nil {
		return nil, multisig.NewInvalidActionErrorf("invalid settlement parameters: %v", err)
	}
	return o.register(ctx, params, params.Approvers, params.MinimumSigners)
}

func (o *Orchestrator) register(ctx context.Context, params multisig.ActionParams, signers []string, threshold uint) (*multisig.PendingAction, error) {
	tx, err := o.builder.Build(ctx, params)
	if err != nil {
		if multisig.IsBuildError(err) {
			return nil, err
		}
		return nil, multisig.BuildError{Kind: params.Kind(), Err: err}
	}
	if tx.Ref == "" {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: errInvalidRef}
	}

	action, err := o.registry.CreatePendingAction(tx.Ref, params.Kind(), tx.Payload, tx.Ref, signers, threshold)
	if err != nil {
		return nil, err
	}

	o.log.Info().
		Str("action_id", action.ActionID).
		Str("kind", params.Kind().String()).
		Msg("action submitted for approval")

	return action, nil
}
