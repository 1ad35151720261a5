package qobuz

const (
	// qobuzAPITrackURI is the URI path for track metadata endpoint.
	qobuzAPITrackURI = "track/get"
	// qobuzAPIAlbumURI is the URI path for album metadata endpoint.
	qobuzAPIAlbumURI = "album/get"
	// qobuzAPIArtistURI is the URI path for artist metadata endpoint.
	qobuzAPIArtistURI = "artist/get"
	// qobuzAPILabelURI is the URI path for label metadata endpoint.
	qobuzAPILabelURI = "label/get"
	// qobuzAPIPlaylistURI is the URI path for playlist metadata endpoint.
	qobuzAPIPlaylistURI = "playlist/get"
	// qobuzAPIFileURLURI is the URI path for the signed stream URL endpoint.
	qobuzAPIFileURLURI = "track/getFileUrl"
)

const (
	// appIDHeader carries the application id on every API request.
	appIDHeader = "X-App-Id"
	// userAuthTokenHeader carries the user token on every API request.
	userAuthTokenHeader = "X-User-Auth-Token"
	// streamIntent is the intent sent with file URL requests.
	streamIntent = "stream"
)

const (
	// pageSize is the number of collection items requested per page.
	pageSize = 500
	// maxConcurrentPageRequests bounds parallel page requests for one collection.
	maxConcurrentPageRequests = 4
)

const (
	// albumsCacheSize defines the maximum number of album entries to cache.
	// Sized to hold recent albums accessed during typical usage.
	albumsCacheSize = 5000
	// tracksCacheSize defines the maximum number of track entries to cache.
	tracksCacheSize = 10000
	// playlistsCacheSize defines the maximum number of playlist entries to cache.
	// Playlists don't change frequently, so we cache them.
	playlistsCacheSize = 2000
)
