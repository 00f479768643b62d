package errors

import "errors"

var (
	ErrNotFound = errors.New("flow run not found")

	ErrInvalidID = errors.New("invalid flow run ID format")
)
