package statehttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
	"github.com/dmitrymomot/docstate/pkg/validator"
)

// Error codes reported in ErrorDetail.Code.
const (
	CodeNotFound          = "not_found"
	CodeUnknownTransition = "unknown_transition"
	CodeInvalidTransition = "invalid_transition"
	CodeGuardFailed       = "guard_failed"
	CodeLookupFailed      = "lookup_failed"
	CodePersistenceFailed = "persistence_failed"
	CodeInternal          = "internal_error"
)

// JSONResponse is the envelope of every response body.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request. Details lists the failing fields
// of a field guard.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// StatusOf maps a machine error to its HTTP status and error code. Typed
// machine errors are matched before the sentinels, so a wrapped detail
// never changes the outcome.
func StatusOf(err error) (int, string) {
	switch {
	case statemachine.IsInvalidTransitionError(err):
		return http.StatusConflict, CodeInvalidTransition
	case statemachine.IsGuardFailedError(err):
		return http.StatusUnprocessableEntity, CodeGuardFailed
	case statemachine.IsLookupFailedError(err):
		return http.StatusInternalServerError, CodeLookupFailed
	case statemachine.IsPersistenceFailedError(err):
		return http.StatusInternalServerError, CodePersistenceFailed
	case statemachine.IsNotFoundError(err):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, statemachine.ErrUnknownTransition):
		return http.StatusNotFound, CodeUnknownTransition
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func errorDetail(err error) (int, *ErrorDetail) {
	status, code := StatusOf(err)
	detail := &ErrorDetail{Code: code, Message: err.Error()}

	// Internal failures are reported without the underlying message.
	if status == http.StatusInternalServerError {
		detail.Message = http.StatusText(status)
	}
	if verrs := validator.ExtractValidationErrors(err); !verrs.IsEmpty() {
		detail.Details = verrs.Map()
	}
	return status, detail
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
