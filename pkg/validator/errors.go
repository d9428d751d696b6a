package validator

import "errors"

// MsgRequired is the message reported by Required and RequiredNum.
const MsgRequired = "field is required"

// ErrValidationFailed is returned when validation fails but no specific error is provided.
var ErrValidationFailed = errors.New("validation failed")
