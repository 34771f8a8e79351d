package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrAlreadyExists          = errors.New("already exists")
	ErrInvalidConfig          = errors.New("invalid config")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrNonPositiveAmount      = errors.New("non-positive amount")
	ErrExecutionTimeout       = errors.New("execution timeout")
	ErrMissingField           = errors.New("missing required field")
	ErrInvalidAction          = errors.New("invalid action")
)
