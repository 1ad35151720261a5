// Package http provides custom HTTP transport utilities,
// including request/response logging, User-Agent header injection
// and client-side rate limiting shared by the API clients.
package http
