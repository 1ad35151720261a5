package qobuz

import "errors"

// Static error definitions for better error handling.
var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrNotFound indicates that the requested catalog item does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrUnauthorized indicates that the app id or user token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmptyFileURL indicates that the API returned no stream URL for a track.
	ErrEmptyFileURL = errors.New("no file URL returned")
	// ErrSampleOnly indicates that only a preview sample is available for a track.
	ErrSampleOnly = errors.New("only a sample is available")
)
