// Package utils holds small helpers shared by the clients and the acquisition pipeline:
// path segment sanitizing, URL list reading, regex group extraction and request headers.
package utils
