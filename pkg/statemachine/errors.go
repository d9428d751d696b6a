package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrNoStates            = errors.New("state machine requires at least one state")
	ErrEmptyName           = errors.New("state and transition names cannot be empty")
	ErrDuplicateState      = errors.New("duplicate state name")
	ErrDuplicateTransition = errors.New("duplicate transition name")
	ErrUnknownState        = errors.New("unknown state")
	ErrUnknownTransition   = errors.New("unknown transition")
	ErrNilStore            = errors.New("store cannot be nil")
	ErrBuilderOrder        = errors.New("builder call has no state or transition to apply to")
	ErrUnknownBinding      = errors.New("definition references an unknown binding")
	ErrInvalidDefinition   = errors.New("invalid state machine definition")

	// ErrNotFound is returned by FireByID, and must be returned by Finder
	// implementations, when no document has the requested identifier.
	ErrNotFound = errors.New("document not found")
)

// ErrInvalidTransition indicates the document's current state is not an
// eligible source of the transition.
type ErrInvalidTransition struct {
	Transition string
	State      string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition '%s' from state '%s'", e.Transition, e.State)
}

// ErrGuardFailed indicates the transition guard rejected the document. Err is
// the guard's own failure value: the predicate's error or, for field guards,
// validator.ValidationErrors.
type ErrGuardFailed struct {
	Transition string
	State      string
	Err        error
}

func (e *ErrGuardFailed) Error() string {
	return fmt.Sprintf("transition '%s' to state '%s' rejected by guard: %v", e.Transition, e.State, e.Err)
}

func (e *ErrGuardFailed) Unwrap() error {
	return e.Err
}

// ErrPersistenceFailed wraps the store error of a failed save.
type ErrPersistenceFailed struct {
	Transition string
	Err        error
}

func (e *ErrPersistenceFailed) Error() string {
	return fmt.Sprintf("transition '%s' could not be saved: %v", e.Transition, e.Err)
}

func (e *ErrPersistenceFailed) Unwrap() error {
	return e.Err
}

// ErrLookupFailed wraps a Finder error other than not-found.
type ErrLookupFailed struct {
	ID  string
	Err error
}

func (e *ErrLookupFailed) Error() string {
	return fmt.Sprintf("lookup of document '%s' failed: %v", e.ID, e.Err)
}

func (e *ErrLookupFailed) Unwrap() error {
	return e.Err
}

func IsInvalidTransitionError(err error) bool {
	var e *ErrInvalidTransition
	return errors.As(err, &e)
}

func IsGuardFailedError(err error) bool {
	var e *ErrGuardFailed
	return errors.As(err, &e)
}

func IsPersistenceFailedError(err error) bool {
	var e *ErrPersistenceFailed
	return errors.As(err, &e)
}

func IsLookupFailedError(err error) bool {
	var e *ErrLookupFailed
	return errors.As(err, &e)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
