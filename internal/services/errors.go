package services

import "errors"

// Common service errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrInvalidState   = errors.New("invalid state transition")
	ErrReasonRequired = errors.New("a reason is required for audited changes")
	ErrValidation     = errors.New("validation failed")
)
