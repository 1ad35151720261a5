package qobuz

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/qobuz-grabber/internal/config"
)

// newTestClient creates a client talking to a test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *ClientImpl {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		AppID:         "app",
		AppSecret:     "secret",
		UserAuthToken: "token",
		QobuzBaseURL:  server.URL,
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)

	impl, ok := client.(*ClientImpl)
	require.True(t, ok)

	impl.now = func() time.Time { return time.Unix(1700000000, 0) }

	return impl
}

// writeJSON encodes v as the response body.
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// TestNewClient tests client construction.
func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(&config.Config{})
	require.NoError(t, err)

	impl, ok := client.(*ClientImpl)
	require.True(t, ok)
	assert.Equal(t, config.QobuzAPIBaseURL, impl.baseURL)
	assert.NotZero(t, impl.apiClient.Timeout)
	assert.Zero(t, impl.contentClient.Timeout)
}

// TestClient_GetTrack tests track retrieval, auth headers and caching.
func TestClient_GetTrack(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		assert.Equal(t, "/track/get", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("track_id"))
		assert.Equal(t, "app", r.Header.Get("X-App-Id"))
		assert.Equal(t, "token", r.Header.Get("X-User-Auth-Token"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		writeJSON(t, w, map[string]any{
			"id":         42,
			"title":      "Song",
			"version":    "Live",
			"streamable": true,
			"album": map[string]any{
				"id":     "alb1",
				"title":  "Record",
				"artist": map[string]any{"id": 7, "name": "Band"},
			},
		})
	})

	ctx := context.Background()

	track, err := client.GetTrack(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), track.ID)
	assert.Equal(t, "Song (Live)", track.FullTitle())
	assert.Equal(t, "Band", track.Album.ArtistName())

	again, err := client.GetTrack(ctx, "42")
	require.NoError(t, err)
	assert.Same(t, track, again)
	assert.Equal(t, int32(1), hits.Load())
}

// TestClient_StatusErrors tests mapping of API error responses.
func TestClient_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		expectedErr error
	}{
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"status":"error","code":404,"message":"No result matching given argument"}`,
			expectedErr: ErrNotFound,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"status":"error","code":401,"message":"User authentication is required."}`,
			expectedErr: ErrUnauthorized,
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `oops`,
			expectedErr: ErrUnexpectedHTTPStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.GetAlbum(context.Background(), "missing")
			require.Error(t, err)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.ErrorIs(t, err, ErrUnexpectedHTTPStatus)
		})
	}
}

// TestClient_GetArtist_Pagination tests that every release page is merged in order.
func TestClient_GetArtist_Pagination(t *testing.T) {
	t.Parallel()

	const total = 1100

	var hits atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		assert.Equal(t, "/artist/get", r.URL.Path)
		assert.Equal(t, "albums", r.URL.Query().Get("extra"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))

		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		assert.NoError(t, err)

		items := make([]map[string]any, 0, pageSize)
		for i := offset; i < min(offset+pageSize, total); i++ {
			items = append(items, map[string]any{"id": strconv.Itoa(i), "title": "Album " + strconv.Itoa(i)})
		}

		writeJSON(t, w, map[string]any{
			"id":   9,
			"name": "Band",
			"albums": map[string]any{
				"items":  items,
				"total":  total,
				"offset": offset,
				"limit":  pageSize,
			},
		})
	})

	artist, err := client.GetArtist(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Band", artist.Name)
	require.Len(t, artist.Albums.Items, total)
	assert.Equal(t, int32(3), hits.Load())

	for i, album := range artist.Albums.Items {
		assert.Equal(t, strconv.Itoa(i), album.ID)
	}
}

// TestClient_GetLabel tests label retrieval on a single page.
func TestClient_GetLabel(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/label/get", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("label_id"))

		writeJSON(t, w, map[string]any{
			"id":     5,
			"name":   "Blue Note",
			"albums": map[string]any{"items": []map[string]any{{"id": "a"}, {"id": "b"}}, "total": 2},
		})
	})

	label, err := client.GetLabel(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "Blue Note", label.Name)
	assert.Len(t, label.Albums.Items, 2)
}

// TestClient_GetPlaylist tests playlist retrieval with paged tracks and caching.
func TestClient_GetPlaylist(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		assert.NoError(t, err)

		items := []map[string]any{{"id": offset + 1, "title": "T" + strconv.Itoa(offset)}}

		writeJSON(t, w, map[string]any{
			"id":     3,
			"name":   "Mix",
			"tracks": map[string]any{"items": items, "total": 501},
		})
	})

	ctx := context.Background()

	playlist, err := client.GetPlaylist(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Mix", playlist.Name)
	require.Len(t, playlist.Tracks.Items, 2)
	assert.Equal(t, int64(1), playlist.Tracks.Items[0].ID)
	assert.Equal(t, int64(501), playlist.Tracks.Items[1].ID)

	_, err = client.GetPlaylist(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

// TestClient_GetFileURL tests request signing and unavailable content.
func TestClient_GetFileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		response    map[string]any
		expectedErr error
	}{
		{
			name: "granted",
			response: map[string]any{
				"url":           "https://cdn.example/track.flac",
				"format_id":     27,
				"mime_type":     "audio/flac",
				"sampling_rate": 96,
				"bit_depth":     24,
			},
		},
		{
			name:        "missing url",
			response:    map[string]any{"format_id": 27},
			expectedErr: ErrEmptyFileURL,
		},
		{
			name:        "sample only",
			response:    map[string]any{"url": "https://cdn.example/sample.mp3", "sample": true},
			expectedErr: ErrSampleOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				query := r.URL.Query()

				assert.Equal(t, "/track/getFileUrl", r.URL.Path)
				assert.Equal(t, "12345", query.Get("track_id"))
				assert.Equal(t, "27", query.Get("format_id"))
				assert.Equal(t, "stream", query.Get("intent"))
				assert.Equal(t, "1700000000", query.Get("request_ts"))
				assert.Equal(t, "3eb350f911f88c6970d99eebd510d6f4", query.Get("request_sig"))

				writeJSON(t, w, tt.response)
			})

			fileURL, err := client.GetFileURL(context.Background(), "12345", 27)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, fileURL)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 24, fileURL.BitDepth)
			assert.InDelta(t, 96.0, fileURL.SamplingRate, 0.001)
		})
	}
}

// TestClient_FetchContent tests content streaming.
func TestClient_FetchContent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)

			return
		}

		assert.Empty(t, r.Header.Get("X-User-Auth-Token"), "Content requests must not carry credentials")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		_, _ = io.WriteString(w, "audio-bytes")
	})

	ctx := context.Background()

	result, err := client.FetchContent(ctx, client.baseURL+"/file")
	require.NoError(t, err)

	defer result.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	body, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(body))
	assert.Equal(t, int64(len("audio-bytes")), result.TotalBytes)

	_, err = client.FetchContent(ctx, client.baseURL+"/gone") //nolint:bodyclose // Body is closed on error.
	require.ErrorIs(t, err, ErrUnexpectedHTTPStatus)
}

// TestSignFileURLRequest tests the request signature.
func TestSignFileURLRequest(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"3eb350f911f88c6970d99eebd510d6f4",
		signFileURLRequest("12345", 27, 1700000000, "secret"))
}

// TestTrack_FullTitle tests version suffixes.
func TestTrack_FullTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Song", (&Track{Title: "Song"}).FullTitle())
	assert.Equal(t, "Song", (&Track{Title: "Song", Version: "  "}).FullTitle())
	assert.Equal(t, "Song (2011 Remaster)", (&Track{Title: "Song", Version: "2011 Remaster"}).FullTitle())
}
