package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDependencyNotReady marks a stage triggered before its prerequisite
	// (the transcript) has finished generating.
	ErrDependencyNotReady = errors.New("dependency not ready")
	// ErrGenerationInFlight marks a duplicate trigger while the same stage is
	// already running for the entity.
	ErrGenerationInFlight = errors.New("generation already in flight")
)
