package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSourceMissing indicates the source root directory does not
	// exist. This is the only condition that aborts before assembly.
	ErrSourceMissing = errors.New("source directory does not exist")

	// ErrAborted indicates the push was skipped because errors were
	// recorded during assembly or reconciliation.
	ErrAborted = errors.New("push aborted")

	// ErrPushFailed indicates the bulk write completed but one or more
	// documents were rejected by the store.
	ErrPushFailed = errors.New("push failed")

	// ErrUnknownEnv indicates the named environment is not configured.
	ErrUnknownEnv = errors.New("unknown environment")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
