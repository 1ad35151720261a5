package http

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitTransport is a custom http.RoundTripper that throttles outgoing requests.
// Every request waits for a token from a shared limiter before it is sent.
type RateLimitTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// limiter is shared by every request going through this transport.
	limiter *rate.Limiter
}

// NewRateLimitTransport wraps next with a limiter allowing requestsPerSecond requests.
// A non-positive rate returns next unchanged.
func NewRateLimitTransport(next http.RoundTripper, requestsPerSecond float64) http.RoundTripper {
	if requestsPerSecond <= 0 {
		return next
	}

	burst := max(int(requestsPerSecond), 1)

	return &RateLimitTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// RoundTrip waits for the limiter and forwards the request.
// It implements the http.RoundTripper interface.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	return t.next.RoundTrip(req)
}
