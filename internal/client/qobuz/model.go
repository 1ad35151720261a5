package qobuz

import (
	"io"
	"strings"
)

// FetchJSONResult represents the result of fetching JSON data.
type FetchJSONResult[T any] struct {
	// Data contains the parsed JSON data.
	Data *T
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// FetchContentResult represents an open content stream.
type FetchContentResult struct {
	// Body is the response body, the caller closes it.
	Body io.ReadCloser
	// TotalBytes is the content length, -1 when unknown.
	TotalBytes int64
}

// APIError is the body Qobuz returns alongside non-200 responses.
type APIError struct {
	// Status is "error" for failed calls.
	Status string `json:"status"`
	// Code mirrors the HTTP status.
	Code int `json:"code"`
	// Message is a human readable explanation.
	Message string `json:"message"`
}

// Page is one slice of a paginated collection.
type Page[T any] struct {
	// Items holds the entries of this page.
	Items []*T `json:"items"`
	// Total is the size of the whole collection.
	Total int `json:"total"`
	// Offset is the index of the first entry of this page.
	Offset int `json:"offset"`
	// Limit is the requested page size.
	Limit int `json:"limit"`
}

// ArtistRef is an artist reference embedded in albums and tracks.
type ArtistRef struct {
	// ID is the artist identifier.
	ID int64 `json:"id"`
	// Name is the credited artist name.
	Name string `json:"name"`
}

// Image holds the cover art URLs of an album.
type Image struct {
	// Small is a 230px cover.
	Small string `json:"small"`
	// Thumbnail is a 50px cover.
	Thumbnail string `json:"thumbnail"`
	// Large is a 600px cover.
	Large string `json:"large"`
}

// Genre is the main genre of an album.
type Genre struct {
	// Name is the genre display name.
	Name string `json:"name"`
}

// LabelRef is a label reference embedded in albums.
type LabelRef struct {
	// ID is the label identifier.
	ID int64 `json:"id"`
	// Name is the label name.
	Name string `json:"name"`
}

// Track represents metadata for a single track.
type Track struct {
	// ID is the track identifier.
	ID int64 `json:"id"`
	// Title is the track name without its version.
	Title string `json:"title"`
	// Version is an optional qualifier such as "Remastered".
	Version string `json:"version"`
	// Duration is the length in seconds.
	Duration int64 `json:"duration"`
	// TrackNumber is the position on its medium.
	TrackNumber int64 `json:"track_number"`
	// MediaNumber is the disc number.
	MediaNumber int64 `json:"media_number"`
	// ISRC is the recording code.
	ISRC string `json:"isrc"`
	// Copyright is the copyright notice.
	Copyright string `json:"copyright"`
	// ParentalWarning marks explicit content.
	ParentalWarning bool `json:"parental_warning"`
	// Streamable reports whether the track can be streamed at all.
	Streamable bool `json:"streamable"`
	// MaximumBitDepth is the best available bit depth.
	MaximumBitDepth int `json:"maximum_bit_depth"`
	// MaximumSamplingRate is the best available sampling rate in kHz.
	MaximumSamplingRate float64 `json:"maximum_sampling_rate"`
	// ReleaseDateOriginal is the original release date (YYYY-MM-DD).
	ReleaseDateOriginal string `json:"release_date_original"`
	// Performer is the main performer.
	Performer *ArtistRef `json:"performer"`
	// Composer is the composer, if credited.
	Composer *ArtistRef `json:"composer"`
	// Album is the parent album, present on track/get and playlist tracks.
	Album *Album `json:"album"`
}

// FullTitle returns the title with its version appended in parentheses.
func (t *Track) FullTitle() string {
	version := strings.TrimSpace(t.Version)
	if version == "" {
		return t.Title
	}

	return t.Title + " (" + version + ")"
}

// Album represents metadata for an album.
type Album struct {
	// ID is the album identifier.
	ID string `json:"id"`
	// Title is the album name.
	Title string `json:"title"`
	// Version is an optional edition qualifier.
	Version string `json:"version"`
	// Artist is the main album artist.
	Artist *ArtistRef `json:"artist"`
	// Artists lists every credited artist.
	Artists []*ArtistRef `json:"artists"`
	// Label is the releasing label.
	Label *LabelRef `json:"label"`
	// Genre is the main genre.
	Genre *Genre `json:"genre"`
	// Image holds the cover art URLs.
	Image *Image `json:"image"`
	// UPC is the product code.
	UPC string `json:"upc"`
	// Copyright is the copyright notice.
	Copyright string `json:"copyright"`
	// ReleaseDateOriginal is the original release date (YYYY-MM-DD).
	ReleaseDateOriginal string `json:"release_date_original"`
	// Duration is the total length in seconds.
	Duration int64 `json:"duration"`
	// TracksCount is the number of tracks.
	TracksCount int64 `json:"tracks_count"`
	// MediaCount is the number of discs.
	MediaCount int64 `json:"media_count"`
	// ParentalWarning marks explicit content.
	ParentalWarning bool `json:"parental_warning"`
	// Streamable reports whether the album can be streamed at all.
	Streamable bool `json:"streamable"`
	// MaximumBitDepth is the best available bit depth.
	MaximumBitDepth int `json:"maximum_bit_depth"`
	// MaximumSamplingRate is the best available sampling rate in kHz.
	MaximumSamplingRate float64 `json:"maximum_sampling_rate"`
	// Tracks is present on album/get.
	Tracks *Page[Track] `json:"tracks"`
}

// ArtistName returns the main artist name or an empty string.
func (a *Album) ArtistName() string {
	if a == nil || a.Artist == nil {
		return ""
	}

	return a.Artist.Name
}

// Artist represents an artist with its albums.
type Artist struct {
	// ID is the artist identifier.
	ID int64 `json:"id"`
	// Name is the artist name.
	Name string `json:"name"`
	// Albums holds the artist releases.
	Albums *Page[Album] `json:"albums"`
}

// Label represents a label with its albums.
type Label struct {
	// ID is the label identifier.
	ID int64 `json:"id"`
	// Name is the label name.
	Name string `json:"name"`
	// Albums holds the label releases.
	Albums *Page[Album] `json:"albums"`
}

// Owner is the creator of a playlist.
type Owner struct {
	// ID is the user identifier.
	ID int64 `json:"id"`
	// Name is the user display name.
	Name string `json:"name"`
}

// Playlist represents a playlist with its tracks.
type Playlist struct {
	// ID is the playlist identifier.
	ID int64 `json:"id"`
	// Name is the playlist title.
	Name string `json:"name"`
	// Description is the playlist description.
	Description string `json:"description"`
	// Owner is the playlist creator.
	Owner *Owner `json:"owner"`
	// TracksCount is the number of tracks.
	TracksCount int64 `json:"tracks_count"`
	// Duration is the total length in seconds.
	Duration int64 `json:"duration"`
	// Tracks holds the playlist tracks.
	Tracks *Page[Track] `json:"tracks"`
}

// FileURL is the signed stream location of a track in a given format.
type FileURL struct {
	// TrackID is the track identifier.
	TrackID int64 `json:"track_id"`
	// URL is the temporary content URL.
	URL string `json:"url"`
	// FormatID is the format actually granted.
	FormatID int `json:"format_id"`
	// MimeType is the content type, e.g. "audio/flac".
	MimeType string `json:"mime_type"`
	// SamplingRate is the granted sampling rate in kHz.
	SamplingRate float64 `json:"sampling_rate"`
	// BitDepth is the granted bit depth.
	BitDepth int `json:"bit_depth"`
	// Sample is true when only a preview is available.
	Sample bool `json:"sample"`
}
