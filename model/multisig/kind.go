package multisig

import (
	"errors"
	"fmt"
)

// ActionKind enumerates the closed set of on-chain actions that can be put
// up for multi-party approval. Each kind has a fixed parameter shape which
// is decoded and validated once, when the action is created; after that the
// coordinator only ever carries the opaque unsigned payload.
type ActionKind int

const (
	// ActionColonyCreation registers a new colony on chain.
	ActionColonyCreation ActionKind = iota + 1
	// ActionDeliverySettlement settles a completed delivery.
	ActionDeliverySettlement
)

func (k ActionKind) String() string {
	switch k {
	case ActionColonyCreation:
		return "colony_creation"
	case ActionDeliverySettlement:
		return "delivery_settlement"
	default:
		return "unknown"
	}
}

// ActionParams is the typed parameter payload for one action kind.
type ActionParams interface {
	Kind() ActionKind
	Validate() error
}

// ColonyParams describes a colony to be created. Creators double as the
// required signer set; MinimumSigners is the approval threshold.
type ColonyParams struct {
	Name           string   `json:"name"`
	ColonyType     string   `json:"colonyType"`
	Description    string   `json:"description,omitempty"`
	Commission     uint     `json:"commission"`
	Creators       []string `json:"creators"`
	MinimumSigners uint     `json:"minimumSigners"`
}

func (p ColonyParams) Kind() ActionKind { return ActionColonyCreation }

func (p ColonyParams) Validate() error {
	if p.Name == "" {
		return errors.New("colony name is required")
	}
	if p.ColonyType != "heterogeneous" && p.ColonyType != "homogeneous" {
		return fmt.Errorf("unknown colony type %q", p.ColonyType)
	}
	if p.Commission > 100 {
		return fmt.Errorf("commission %d%% out of range", p.Commission)
	}
	if len(p.Creators) == 0 {
		return errors.New("at least one creator is required")
	}
	return nil
}

// DeliveryParams describes the settlement of a completed delivery. The
// colony owners listed in Approvers must co-sign the payout.
type DeliveryParams struct {
	DeliveryID     string   `json:"deliveryId"`
	ColonyID       string   `json:"colonyId"`
	Recipient      string   `json:"recipient"`
	AmountLovelace uint64   `json:"amountLovelace"`
	Approvers      []string `json:"approvers"`
	MinimumSigners uint     `json:"minimumSigners"`
}

func (p DeliveryParams) Kind() ActionKind { return ActionDeliverySettlement }

func (p DeliveryParams) Validate() error {
	if p.DeliveryID == "" {
		return errors.New("delivery id is required")
	}
	if p.ColonyID == "" {
		return errors.New("colony id is required")
	}
	if p.Recipient == "" {
		return errors.New("recipient address is required")
	}
	if p.AmountLovelace == 0 {
		return errors.New("settlement amount must be positive")
	}
	if len(p.Approvers) == 0 {
		return errors.New("at least one approver is required")
	}
	return nil
}
