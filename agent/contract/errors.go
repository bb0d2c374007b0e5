package contract

import "errors"

var (
	ErrUnauthorized = errors.New("caller identity not found")
	ErrModelInvoke  = errors.New("model invoke failed")
	ErrRoundLimit   = errors.New("tool dispatch round limit exceeded")
	ErrValidation   = errors.New("validation failed")
)
