// Package remote implements the transaction builder against the ShipShift
// transaction construction API, which turns typed action parameters into an
// unsigned Cardano transaction.
package remote

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Builder calls the remote build endpoint for each action kind and returns
// the unsigned payload plus its stable reference.
type Builder struct {
	log     zerolog.Logger
	client  *http.Client
	baseURL string
}

func NewBuilder(log zerolog.Logger, client *http.Client, baseURL string) *Builder {
	return &Builder{
		log:     log.With().Str("component", "tx_builder").Logger(),
		client:  client,
		baseURL: baseURL,
	}
}

var _ module.TransactionBuilder = (*Builder)(nil)

// buildResponse mirrors the build endpoint's reply: the unsigned
// transaction body as hex CBOR and the id under which it was prepared.
type buildResponse struct {
	TxID           string `json:"txId"`
	UnsignedTxCbor string `json:"unsignedTxCbor"`
}

func (b *Builder) Build(ctx context.Context, params multisig.ActionParams) (*module.UnsignedTx, error) {
	endpoint, err := b.endpointFor(params.Kind())
	if err != nil {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: err}
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: fmt.Errorf("could not encode parameters: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: fmt.Errorf("could not create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: fmt.Errorf("build request failed: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, multisig.BuildError{
			Kind: params.Kind(),
			Err:  fmt.Errorf("build endpoint returned %d: %s", res.StatusCode, payload),
		}
	}

	var parsed buildResponse
	err = json.NewDecoder(res.Body).Decode(&parsed)
	if err != nil {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: fmt.Errorf("could not decode response: %w", err)}
	}
	if parsed.TxID == "" || parsed.UnsignedTxCbor == "" {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: fmt.Errorf("build endpoint returned incomplete transaction")}
	}

	payload, err := hex.DecodeString(parsed.UnsignedTxCbor)
	if err != nil {
		return nil, multisig.BuildError{Kind: params.Kind(), Err: fmt.Errorf("could not decode unsigned tx hex: %w", err)}
	}

	b.log.Debug().
		Str("kind", params.Kind().String()).
		Str("tx_id", parsed.TxID).
		Int("payload_size", len(payload)).
		Msg("unsigned transaction built")

	return &module.UnsignedTx{Payload: payload, Ref: parsed.TxID}, nil
}

func (b *Builder) endpointFor(kind multisig.ActionKind) (string, error) {
	switch kind {
	case multisig.ActionColonyCreation:
		return b.baseURL + "/colony/create", nil
	case multisig.ActionDeliverySettlement:
		return b.baseURL + "/delivery/settle", nil
	default:
		return "", fmt.Errorf("no build endpoint for action kind %d", kind)
	}
}
