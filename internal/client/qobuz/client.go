package qobuz

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/logger"
	http_transport "github.com/oshokin/qobuz-grabber/internal/transport/http"
	"github.com/oshokin/qobuz-grabber/internal/utils"
)

// Client defines the interface for interacting with Qobuz's API.
type Client interface {
	// FetchContent opens the content stream behind a signed file URL.
	FetchContent(ctx context.Context, contentURL string) (*FetchContentResult, error)
	// GetAlbum retrieves album metadata with its tracks.
	GetAlbum(ctx context.Context, albumID string) (*Album, error)
	// GetArtist retrieves artist metadata with every release.
	GetArtist(ctx context.Context, artistID string) (*Artist, error)
	// GetFileURL retrieves the signed stream URL of a track in the given format.
	GetFileURL(ctx context.Context, trackID string, formatID int) (*FileURL, error)
	// GetLabel retrieves label metadata with every release.
	GetLabel(ctx context.Context, labelID string) (*Label, error)
	// GetPlaylist retrieves playlist metadata with every track.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
	// GetTrack retrieves track metadata with its parent album.
	GetTrack(ctx context.Context, trackID string) (*Track, error)
}

// ClientImpl implements the Client interface for interacting with Qobuz's API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// baseURL is the base URL for API requests.
	baseURL string
	// apiClient is the HTTP client for metadata requests, bounded by the request timeout.
	apiClient *http.Client
	// contentClient is the HTTP client for content streams, bounded by the caller context only.
	contentClient *http.Client
	// now returns the current time, used to sign file URL requests.
	now func() time.Time
	// maxConcurrentPages bounds parallel page requests.
	maxConcurrentPages int
	// albumsCache caches album metadata to reduce duplicate API calls for the same albums.
	albumsCache *lru.Cache[string, *Album]
	// tracksCache caches track metadata to reduce duplicate API calls for the same tracks.
	tracksCache *lru.Cache[string, *Track]
	// playlistsCache caches playlist metadata to reduce duplicate API calls for the same playlists.
	playlistsCache *lru.Cache[string, *Playlist]
}

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL := cfg.QobuzBaseURL
	if baseURL == "" {
		baseURL = config.QobuzAPIBaseURL
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}

	timeout := cfg.ParsedRequestTimeout
	if timeout <= 0 {
		timeout = http_transport.DefaultTimeout
	}

	// Credentials go to the API only, content URLs point to a CDN.
	apiTransport := http_transport.NewHeaderInjector(
		http_transport.NewRateLimitTransport(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			cfg.APIRequestsPerSecond),
		utils.NewStaticHeaderProvider(map[string]string{
			http_transport.UserAgentHeader: http_transport.DefaultUserAgent,
			appIDHeader:                    cfg.AppID,
			userAuthTokenHeader:            cfg.UserAuthToken,
		}))

	contentTransport := http_transport.NewHeaderInjector(
		http.DefaultTransport,
		utils.NewStaticHeaderProvider(map[string]string{
			http_transport.UserAgentHeader: http_transport.DefaultUserAgent,
		}))

	albumsCache, err := lru.New[string, *Album](albumsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create albums cache: %w", err)
	}

	tracksCache, err := lru.New[string, *Track](tracksCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracks cache: %w", err)
	}

	playlistsCache, err := lru.New[string, *Playlist](playlistsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlists cache: %w", err)
	}

	client := &ClientImpl{
		cfg:     cfg,
		baseURL: baseURL,
		apiClient: &http.Client{
			Transport: apiTransport,
			Timeout:   timeout,
		},
		contentClient: &http.Client{
			Transport: contentTransport,
		},
		now:                time.Now,
		maxConcurrentPages: maxConcurrentPageRequests,
		albumsCache:        albumsCache,
		tracksCache:        tracksCache,
		playlistsCache:     playlistsCache,
	}

	return client, nil
}

// FetchContent opens the content stream behind a signed file URL.
func (c *ClientImpl) FetchContent(ctx context.Context, contentURL string) (*FetchContentResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.contentClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchContentResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// GetTrack retrieves track metadata with its parent album.
// Uses an LRU cache to avoid redundant API calls for the same tracks.
func (c *ClientImpl) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	if cached, ok := c.tracksCache.Get(trackID); ok {
		logger.Debugf(ctx, "Track cache hit for ID: %s", trackID)

		return cached, nil
	}

	query := url.Values{}
	query.Set("track_id", trackID)

	result, err := fetchJSONWithQuery[Track](c, ctx, qobuzAPITrackURI, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, err)
	}

	c.tracksCache.Add(trackID, result.Data)

	return result.Data, nil
}

// GetAlbum retrieves album metadata with its tracks.
// Uses an LRU cache to avoid redundant API calls for the same albums.
func (c *ClientImpl) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	if cached, ok := c.albumsCache.Get(albumID); ok {
		logger.Debugf(ctx, "Album cache hit for ID: %s", albumID)

		return cached, nil
	}

	query := url.Values{}
	query.Set("album_id", albumID)

	result, err := fetchJSONWithQuery[Album](c, ctx, qobuzAPIAlbumURI, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", albumID, err)
	}

	c.albumsCache.Add(albumID, result.Data)

	return result.Data, nil
}

// GetArtist retrieves artist metadata with every release.
func (c *ClientImpl) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	fetchPage := func(ctx context.Context, offset int) (*Artist, error) {
		query := url.Values{}
		query.Set("artist_id", artistID)
		query.Set("extra", "albums")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		result, err := fetchJSONWithQuery[Artist](c, ctx, qobuzAPIArtistURI, query)
		if err != nil {
			return nil, err
		}

		return result.Data, nil
	}

	artist, err := fetchPage(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get artist %s: %w", artistID, err)
	}

	if artist.Albums == nil {
		return artist, nil
	}

	rest, err := fetchRemainingPages(c, ctx, artist.Albums.Total,
		func(ctx context.Context, offset int) (*Page[Album], error) {
			page, pageErr := fetchPage(ctx, offset)
			if pageErr != nil {
				return nil, pageErr
			}

			return page.Albums, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get artist %s releases: %w", artistID, err)
	}

	for _, items := range rest {
		artist.Albums.Items = append(artist.Albums.Items, items...)
	}

	return artist, nil
}

// GetLabel retrieves label metadata with every release.
func (c *ClientImpl) GetLabel(ctx context.Context, labelID string) (*Label, error) {
	fetchPage := func(ctx context.Context, offset int) (*Label, error) {
		query := url.Values{}
		query.Set("label_id", labelID)
		query.Set("extra", "albums")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		result, err := fetchJSONWithQuery[Label](c, ctx, qobuzAPILabelURI, query)
		if err != nil {
			return nil, err
		}

		return result.Data, nil
	}

	label, err := fetchPage(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get label %s: %w", labelID, err)
	}

	if label.Albums == nil {
		return label, nil
	}

	rest, err := fetchRemainingPages(c, ctx, label.Albums.Total,
		func(ctx context.Context, offset int) (*Page[Album], error) {
			page, pageErr := fetchPage(ctx, offset)
			if pageErr != nil {
				return nil, pageErr
			}

			return page.Albums, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to get label %s releases: %w", labelID, err)
	}

	for _, items := range rest {
		label.Albums.Items = append(label.Albums.Items, items...)
	}

	return label, nil
}

// GetPlaylist retrieves playlist metadata with every track.
// Uses an LRU cache to avoid redundant API calls for the same playlists.
func (c *ClientImpl) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	if cached, ok := c.playlistsCache.Get(playlistID); ok {
		logger.Debugf(ctx, "Playlist cache hit for ID: %s", playlistID)

		return cached, nil
	}

	fetchPage := func(ctx context.Context, offset int) (*Playlist, error) {
		query := url.Values{}
		query.Set("playlist_id", playlistID)
		query.Set("extra", "tracks")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		result, err := fetchJSONWithQuery[Playlist](c, ctx, qobuzAPIPlaylistURI, query)
		if err != nil {
			return nil, err
		}

		return result.Data, nil
	}

	playlist, err := fetchPage(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}

	if playlist.Tracks != nil {
		rest, restErr := fetchRemainingPages(c, ctx, playlist.Tracks.Total,
			func(ctx context.Context, offset int) (*Page[Track], error) {
				page, pageErr := fetchPage(ctx, offset)
				if pageErr != nil {
					return nil, pageErr
				}

				return page.Tracks, nil
			})
		if restErr != nil {
			return nil, fmt.Errorf("failed to get playlist %s tracks: %w", playlistID, restErr)
		}

		for _, items := range rest {
			playlist.Tracks.Items = append(playlist.Tracks.Items, items...)
		}
	}

	c.playlistsCache.Add(playlistID, playlist)

	return playlist, nil
}

// GetFileURL retrieves the signed stream URL of a track in the given format.
func (c *ClientImpl) GetFileURL(ctx context.Context, trackID string, formatID int) (*FileURL, error) {
	timestamp := c.now().Unix()

	query := url.Values{}
	query.Set("track_id", trackID)
	query.Set("format_id", strconv.Itoa(formatID))
	query.Set("intent", streamIntent)
	query.Set("request_ts", strconv.FormatInt(timestamp, 10))
	query.Set("request_sig", signFileURLRequest(trackID, formatID, timestamp, c.cfg.AppSecret))

	result, err := fetchJSONWithQuery[FileURL](c, ctx, qobuzAPIFileURLURI, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL for track %s: %w", trackID, err)
	}

	fileURL := result.Data

	switch {
	case fileURL.URL == "":
		return nil, fmt.Errorf("%w: track %s", ErrEmptyFileURL, trackID)
	case fileURL.Sample:
		return nil, fmt.Errorf("%w: track %s", ErrSampleOnly, trackID)
	}

	return fileURL, nil
}
