// Package broadcaster implements the broadcast client against the
// ShipShift submission API, which forwards fully witnessed transactions to
// the Cardano network.
package broadcaster

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client submits witnessed transactions over HTTP. Submit is never retried
// here; only the read-only acceptance query used by crash recovery retries
// on transient faults.
type Client struct {
	log     zerolog.Logger
	client  *http.Client
	baseURL string
}

func NewClient(log zerolog.Logger, client *http.Client, baseURL string) *Client {
	return &Client{
		log:     log.With().Str("component", "broadcaster").Logger(),
		client:  client,
		baseURL: baseURL,
	}
}

var _ module.BroadcastClient = (*Client)(nil)

type submitRequest struct {
	UnsignedTx string   `json:"unsignedTx"`
	Witnesses  []string `json:"witnesses"`
}

type submitResponse struct {
	TxID string `json:"txId"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

func (c *Client) Submit(ctx context.Context, unsignedPayload []byte, witnesses []*multisig.Witness) (string, error) {
	encoded := make([]string, 0, len(witnesses))
	for _, witness := range witnesses {
		encoded = append(encoded, hex.EncodeToString(witness.SignedPayload))
	}

	body, err := json.Marshal(submitRequest{
		UnsignedTx: hex.EncodeToString(unsignedPayload),
		Witnesses:  encoded,
	})
	if err != nil {
		return "", fmt.Errorf("could not encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/submit-multisig", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submission request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("submission endpoint returned %d: %s", res.StatusCode, payload)
	}

	var parsed submitResponse
	err = json.NewDecoder(res.Body).Decode(&parsed)
	if err != nil {
		return "", fmt.Errorf("could not decode submission response: %w", err)
	}
	if parsed.TxID == "" {
		return "", fmt.Errorf("submission endpoint returned no transaction id")
	}

	c.log.Info().Str("tx_id", parsed.TxID).Int("witnesses", len(witnesses)).Msg("transaction broadcast")

	return parsed.TxID, nil
}

// Accepted asks the ledger whether the transaction was already included.
// Transient faults are retried with capped fibonacci backoff, since this
// query gates crash recovery and a flaky read must not fail an action.
func (c *Client) Accepted(ctx context.Context, derivedTxID string) (bool, error) {
	var accepted bool

	fib, err := retry.NewFibonacci(200 * time.Millisecond)
	if err != nil {
		return false, fmt.Errorf("create retry mechanism: %w", err)
	}
	backoff := retry.WithMaxRetries(5, fib)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		accepted, err = c.queryAccepted(ctx, derivedTxID)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("could not query acceptance for %s: %w", derivedTxID, err)
	}
	return accepted, nil
}

func (c *Client) queryAccepted(ctx context.Context, derivedTxID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/accepted/"+derivedTxID, nil)
	if err != nil {
		return false, fmt.Errorf("could not create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("acceptance query failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("acceptance endpoint returned %d", res.StatusCode)
	}

	var parsed acceptedResponse
	err = json.NewDecoder(res.Body).Decode(&parsed)
	if err != nil {
		return false, fmt.Errorf("could not decode acceptance response: %w", err)
	}
	return parsed.Accepted, nil
}
