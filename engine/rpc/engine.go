// Package rpc exposes the witness collection core over HTTP: registering
// actions through the orchestrator, accepting witnesses, and serving action
// status to the UI layer.
package rpc

import (
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/shipshift/quorum/coordinator"
	"github.com/shipshift/quorum/model/multisig"
	"github.com/shipshift/quorum/module/signer"
	"github.com/shipshift/quorum/orchestrator"
	"github.com/shipshift/quorum/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Engine struct {
	log       zerolog.Logger
	orch      *orchestrator.Orchestrator
	coord     *coordinator.Coordinator
	witnesses storage.Witnesses
}

func New(log zerolog.Logger, orch *orchestrator.Orchestrator, coord *coordinator.Coordinator, witnesses storage.Witnesses) *Engine {
	return &Engine{
		log:       log.With().Str("engine", "rpc").Logger(),
		orch:      orch,
		coord:     coord,
		witnesses: witnesses,
	}
}

// Router builds the gorilla mux router for the v1 API.
func (e *Engine) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(e.logging)

	v1.Methods(http.MethodPost).Path("/colonies").HandlerFunc(e.createColony)
	v1.Methods(http.MethodPost).Path("/settlements").HandlerFunc(e.settleDelivery)
	v1.Methods(http.MethodPost).Path("/actions/{id}/witnesses").HandlerFunc(e.submitWitness)
	v1.Methods(http.MethodGet).Path("/actions/{id}").HandlerFunc(e.getAction)

	return router
}

// Server wraps the router in an HTTP server bound to the given address.
func (e *Engine) Server(listenAddress string) *http.Server {
	return &http.Server{
		Addr:         listenAddress,
		Handler:      e.Router(),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
}

func (e *Engine) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		e.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	})
}

type actionResponse struct {
	ActionID        string    `json:"actionId"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	RequiredSigners []string  `json:"requiredSigners"`
	Threshold       uint      `json:"threshold"`
	WitnessCount    uint      `json:"witnessCount"`
	FinalTxID       string    `json:"finalTxId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type witnessRequest struct {
	Signer  string `json:"signer"`
	Witness string `json:"witness"` // hex-encoded wallet witness
}

type errorResponse struct {
	Error string `json:"error"`
}

func (e *Engine) createColony(w http.ResponseWriter, r *http.Request) {
	var params multisig.ColonyParams
	err := json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		e.writeError(w, http.StatusBadRequest, err)
		return
	}

	action, err := e.orch.CreateColony(r.Context(), params)
	if err != nil {
		e.writeMappedError(w, err)
		return
	}
	e.writeAction(w, http.StatusCreated, action, 0)
}

func (e *Engine) settleDelivery(w http.ResponseWriter, r *http.Request) {
	var params multisig.DeliveryParams
	err := json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		e.writeError(w, http.StatusBadRequest, err)
		return
	}

	action, err := e.orch.SettleDelivery(r.Context(), params)
	if err != nil {
		e.writeMappedError(w, err)
		return
	}
	e.writeAction(w, http.StatusCreated, action, 0)
}

func (e *Engine) submitWitness(w http.ResponseWriter, r *http.Request) {
	actionID := mux.Vars(r)["id"]

	var req witnessRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		e.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Signer == "" {
		e.writeError(w, http.StatusBadRequest, errMissingSigner)
		return
	}

	witnessBytes, err := hex.DecodeString(req.Witness)
	if err != nil {
		e.writeError(w, http.StatusBadRequest, err)
		return
	}

	// the wallet already signed in the user's session; wrap the witness
	// bytes as this call's signing capability
	capability, err := signer.NewPreSigned(req.Signer, witnessBytes)
	if err != nil {
		e.writeMappedError(w, err)
		return
	}

	outcome, err := e.coord.SubmitWitness(r.Context(), actionID, req.Signer, capability)
	if err != nil {
		e.writeMappedError(w, err)
		return
	}

	e.writeJSON(w, http.StatusOK, outcome)
}

func (e *Engine) getAction(w http.ResponseWriter, r *http.Request) {
	actionID := mux.Vars(r)["id"]

	action, err := e.coord.GetStatus(actionID)
	if err != nil {
		e.writeMappedError(w, err)
		return
	}

	count, err := e.witnesses.CountByAction(actionID)
	if err != nil {
		e.writeError(w, http.StatusInternalServerError, err)
		return
	}

	e.writeAction(w, http.StatusOK, action, count)
}

func (e *Engine) writeAction(w http.ResponseWriter, status int, action *multisig.PendingAction, count uint) {
	e.writeJSON(w, status, actionResponse{
		ActionID:        action.ActionID,
		Kind:            action.Kind.String(),
		Status:          action.Status.String(),
		RequiredSigners: action.RequiredSigners,
		Threshold:       action.Threshold,
		WitnessCount:    count,
		FinalTxID:       action.FinalTxID,
		CreatedAt:       action.CreatedAt,
	})
}

func (e *Engine) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		e.log.Error().Err(err).Msg("could not encode response")
	}
}

func (e *Engine) writeError(w http.ResponseWriter, status int, err error) {
	e.writeJSON(w, status, errorResponse{Error: err.Error()})
}
