package delivery

import (
	"errors"
)

// Static error definitions for better error handling.
var (
	// ErrDelivery wraps every backend failure; sources are kept for a retry.
	ErrDelivery = errors.New("delivery failed")
	// ErrIO indicates a local filesystem copy or write failure.
	ErrIO = errors.New("i/o error")
	// ErrDeliveryTimeout indicates that a backend call exceeded the delivery timeout.
	ErrDeliveryTimeout = errors.New("delivery timed out")
	// ErrSourceMissing indicates that the path to deliver does not exist.
	ErrSourceMissing = errors.New("delivery source does not exist")
	// ErrEmptySource indicates that the source folder holds no files to upload.
	ErrEmptySource = errors.New("delivery source has no files")
	// ErrCommandFailed indicates that an external command exited with an error.
	ErrCommandFailed = errors.New("external command failed")
	// ErrEmptyCommandTemplate indicates that the sync command template has no program.
	ErrEmptyCommandTemplate = errors.New("command template is empty")
)

// IsRetryable reports whether a delivery error is worth retrying as is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDeliveryTimeout)
}
