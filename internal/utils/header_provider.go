package utils

import "maps"

//go:generate $MOCKGEN -source=header_provider.go -destination=mocks/header_provider_mock.go

// HeaderProvider supplies the headers every request of one HTTP client carries.
type HeaderProvider interface {
	// Headers returns header values keyed by canonical header name.
	Headers() map[string]string
}

// StaticHeaderProvider returns a fixed set of headers.
type StaticHeaderProvider struct {
	// headers is never exposed directly, callers get a copy.
	headers map[string]string
}

// NewStaticHeaderProvider creates a provider returning a copy of headers on every call.
func NewStaticHeaderProvider(headers map[string]string) HeaderProvider {
	return &StaticHeaderProvider{headers: maps.Clone(headers)}
}

// Headers returns a copy of the configured headers.
func (p *StaticHeaderProvider) Headers() map[string]string {
	return maps.Clone(p.headers)
}
