package rpc

import (
	"errors"
	"net/http"

	"github.com/shipshift/quorum/model/multisig"
)

var errMissingSigner = errors.New("signer is required")

// writeMappedError translates the core error taxonomy to HTTP statuses.
// Conflicting submissions (duplicates, closed signing window) map to 409 so
// the UI can refresh its view; upstream faults (builder, broadcast) map to
// 502 since the core itself is healthy.
func (e *Engine) writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, multisig.ErrActionNotFound):
		e.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, multisig.ErrUnauthorizedSigner):
		e.writeError(w, http.StatusForbidden, err)
	case errors.Is(err, multisig.ErrDuplicateWitness),
		errors.Is(err, multisig.ErrDuplicateAction),
		errors.Is(err, multisig.ErrActionClosed):
		e.writeError(w, http.StatusConflict, err)
	case multisig.IsInvalidThresholdError(err),
		multisig.IsInvalidActionError(err):
		e.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, multisig.ErrSigningRejected),
		multisig.IsSigningError(err):
		e.writeError(w, http.StatusUnprocessableEntity, err)
	case multisig.IsBuildError(err),
		multisig.IsBroadcastError(err):
		e.writeError(w, http.StatusBadGateway, err)
	default:
		e.log.Error().Err(err).Msg("unexpected error")
		e.writeError(w, http.StatusInternalServerError, err)
	}
}
