package multisig

import (
	"errors"
	"fmt"
)

var (
	// ErrActionNotFound indicates that no pending action exists under the
	// given id.
	ErrActionNotFound = errors.New("pending action not found")

	// ErrActionClosed indicates that the signing window for the action has
	// closed: it is submitting, finalized, or failed.
	ErrActionClosed = errors.New("action no longer accepts witnesses")

	// ErrUnauthorizedSigner indicates that the signer is not in the
	// action's required signer set.
	ErrUnauthorizedSigner = errors.New("signer not authorized for action")

	// ErrDuplicateWitness indicates that the signer already contributed a
	// witness for this action. The original witness is kept unchanged.
	ErrDuplicateWitness = errors.New("duplicated witness for signer")

	// ErrDuplicateAction indicates that an action with the same id already
	// exists.
	ErrDuplicateAction = errors.New("action already exists")

	// ErrInvalidTransition indicates a status change that the action
	// lifecycle does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSigningRejected indicates the signer declined to sign.
	ErrSigningRejected = errors.New("signing rejected by signer")
)

// InvalidThresholdError indicates a threshold outside [1, |signers|].
type InvalidThresholdError struct {
	Threshold uint
	Signers   uint
}

func (e InvalidThresholdError) Error() string {
	return fmt.Sprintf("threshold %d outside [1, %d]", e.Threshold, e.Signers)
}

// IsInvalidThresholdError returns whether err is an InvalidThresholdError.
func IsInvalidThresholdError(err error) bool {
	var e InvalidThresholdError
	return errors.As(err, &e)
}

// InvalidActionError indicates malformed action inputs other than the
// threshold (empty id, empty payload, duplicate signers).
type InvalidActionError struct {
	err error
}

func NewInvalidActionErrorf(msg string, args ...interface{}) error {
	return InvalidActionError{err: fmt.Errorf(msg, args...)}
}

func (e InvalidActionError) Error() string { return e.err.Error() }
func (e InvalidActionError) Unwrap() error { return e.err }

// IsInvalidActionError returns whether err is an InvalidActionError.
func IsInvalidActionError(err error) bool {
	var e InvalidActionError
	return errors.As(err, &e)
}

// SigningError indicates a wallet or transport fault while obtaining a
// witness. No partial witness is recorded when it occurs.
type SigningError struct {
	Signer string
	Err    error
}

func NewSigningErrorf(signer string, msg string, args ...interface{}) error {
	return SigningError{Signer: signer, Err: fmt.Errorf(msg, args...)}
}

func (e SigningError) Error() string {
	return fmt.Sprintf("signing failed for %s: %s", e.Signer, e.Err.Error())
}

func (e SigningError) Unwrap() error { return e.Err }

// IsSigningError returns whether err is a SigningError.
func IsSigningError(err error) bool {
	var e SigningError
	return errors.As(err, &e)
}

// BuildError indicates the external transaction builder could not produce
// an unsigned transaction. It always occurs before any state is persisted.
type BuildError struct {
	Kind ActionKind
	Err  error
}

func (e BuildError) Error() string {
	return fmt.Sprintf("could not build %s transaction: %s", e.Kind, e.Err.Error())
}

func (e BuildError) Unwrap() error { return e.Err }

// IsBuildError returns whether err is a BuildError.
func IsBuildError(err error) bool {
	var e BuildError
	return errors.As(err, &e)
}

// BroadcastError indicates the broadcast client could not get the fully
// witnessed transaction accepted. It is terminal for the action.
type BroadcastError struct {
	ActionID string
	Err      error
}

func (e BroadcastError) Error() string {
	return fmt.Sprintf("broadcast failed for action %s: %s", e.ActionID, e.Err.Error())
}

func (e BroadcastError) Unwrap() error { return e.Err }

// IsBroadcastError returns whether err is a BroadcastError.
func IsBroadcastError(err error) bool {
	var e BroadcastError
	return errors.As(err, &e)
}
