package http

import (
	"net/http"

	"github.com/oshokin/qobuz-grabber/internal/utils"
)

// UserAgentHeader is the HTTP header name for User-Agent.
const UserAgentHeader = "User-Agent"

// HeaderInjector is an http.RoundTripper that adds client-wide headers to outgoing requests.
// Headers already set on a request are kept, empty values are skipped.
type HeaderInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// provider supplies the headers to inject.
	provider utils.HeaderProvider
}

// NewHeaderInjector wraps next with a transport injecting the headers of provider.
func NewHeaderInjector(next http.RoundTripper, provider utils.HeaderProvider) http.RoundTripper {
	return &HeaderInjector{
		next:     next,
		provider: provider,
	}
}

// RoundTrip injects missing headers into a clone of req and passes it on.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	var injected *http.Request

	for name, value := range t.provider.Headers() {
		if value == "" || req.Header.Get(name) != "" {
			continue
		}

		// A RoundTripper must not modify the caller's request.
		if injected == nil {
			injected = req.Clone(req.Context())
		}

		injected.Header.Set(name, value)
	}

	if injected == nil {
		return t.next.RoundTrip(req)
	}

	return t.next.RoundTrip(injected)
}
