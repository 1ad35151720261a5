package history

import "errors"

// Static error definitions for better error handling.
var (
	// ErrEmptyPath indicates that no database path was given.
	ErrEmptyPath = errors.New("history database path is empty")
	// ErrRunNotFound indicates that no run has the given request id.
	ErrRunNotFound = errors.New("run not found")
)
