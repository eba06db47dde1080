package service

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrBadRequest is returned when a request is well-formed but cannot be served as asked.
var ErrBadRequest = errors.New("bad request")

// ErrConflict is returned when the request conflicts with the current state.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition is returned for a donation status change outside the transition table.
var ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrConflict)

// ErrInvalidInput is returned when a field fails validation.
var ErrInvalidInput = fmt.Errorf("%w: invalid input", ErrBadRequest)
