package gofile

import "errors"

// Static error definitions for better error handling.
var (
	// ErrEmptyToken indicates that no API token is configured.
	ErrEmptyToken = errors.New("gofile token is missing")
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrStatusNotOK indicates that the API answered with a non-"ok" status.
	ErrStatusNotOK = errors.New("gofile status is not ok")
	// ErrUnexpectedContentsFormat indicates that a folder listing could not be decoded.
	ErrUnexpectedContentsFormat = errors.New("unexpected contents format")
)
