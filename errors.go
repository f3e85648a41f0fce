package main

import (
	"errors"
	"fmt"
)

// Base errors for the engine, checked with errors.Is(). Handlers map these
// to HTTP statuses in one place (writeEngineError), so callers can always
// tell "no results" apart from "the request was rejected" or "a collaborator
// is down".
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("service unavailable")
	ErrConflict    = errors.New("conflict")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
