package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/qobuz-grabber/internal/utils"
	mock_utils "github.com/oshokin/qobuz-grabber/internal/utils/mocks"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestRequest(t *testing.T, url string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)

	return req
}

func TestHeaderInjector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provided map[string]string
		existing map[string]string
		expected map[string]string
	}{
		{
			name:     "adds every missing header",
			provided: map[string]string{UserAgentHeader: "TestAgent/1.0", "X-App-Id": "app"},
			expected: map[string]string{UserAgentHeader: "TestAgent/1.0", "X-App-Id": "app"},
		},
		{
			name:     "keeps headers set on the request",
			provided: map[string]string{UserAgentHeader: "TestAgent/1.0", "Authorization": "Bearer provided"},
			existing: map[string]string{"Authorization": "Bearer explicit"},
			expected: map[string]string{UserAgentHeader: "TestAgent/1.0", "Authorization": "Bearer explicit"},
		},
		{
			name:     "skips empty values",
			provided: map[string]string{UserAgentHeader: "TestAgent/1.0", "X-User-Auth-Token": ""},
			expected: map[string]string{UserAgentHeader: "TestAgent/1.0", "X-User-Auth-Token": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for name, value := range tt.expected {
					assert.Equal(t, value, r.Header.Get(name), "header %s", name)
				}

				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			injector := NewHeaderInjector(http.DefaultTransport, utils.NewStaticHeaderProvider(tt.provided))

			req := newTestRequest(t, server.URL)
			for name, value := range tt.existing {
				req.Header.Set(name, value)
			}

			resp, err := injector.RoundTrip(req)
			require.NoError(t, err)

			defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestHeaderInjector_DoesNotModifyCallerRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	provider := mock_utils.NewMockHeaderProvider(ctrl)
	provider.EXPECT().Headers().Return(map[string]string{UserAgentHeader: "TestAgent/1.0"}).Times(1)

	var seen *http.Request

	next := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req

		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}, nil
	})

	req := newTestRequest(t, "http://example.test/api")

	resp, err := NewHeaderInjector(next, provider).RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NotNil(t, seen)
	assert.NotSame(t, req, seen)
	assert.Equal(t, "TestAgent/1.0", seen.Header.Get(UserAgentHeader))
	assert.Empty(t, req.Header.Get(UserAgentHeader))
}

func TestHeaderInjector_PassesRequestThroughWhenComplete(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)

	provider := mock_utils.NewMockHeaderProvider(ctrl)
	provider.EXPECT().Headers().Return(map[string]string{UserAgentHeader: "TestAgent/1.0"})

	req := newTestRequest(t, "http://example.test/api")
	req.Header.Set(UserAgentHeader, "Existing/2.0")

	next := roundTripFunc(func(got *http.Request) (*http.Response, error) {
		assert.Same(t, req, got)

		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	resp, err := NewHeaderInjector(next, provider).RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
