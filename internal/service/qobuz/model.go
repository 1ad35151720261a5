package qobuz

import (
	"fmt"
	"time"

	"github.com/oshokin/qobuz-grabber/internal/service/delivery"
)

const (
	// defaultCoverExtension is the extension of downloaded cover art.
	defaultCoverExtension = ".jpg"
	// coversFolderName holds cover art of a run outside the delivered tree.
	coversFolderName = ".covers"
	// trackNumberPaddingWidth is the width of padded track numbers.
	trackNumberPaddingWidth = 2
)

// CatalogKind is the kind of a catalog reference.
type CatalogKind uint8

const (
	// CatalogKindUnknown - unrecognized reference.
	CatalogKindUnknown CatalogKind = iota
	// CatalogKindTrack - single track.
	CatalogKindTrack
	// CatalogKindAlbum - full album.
	CatalogKindAlbum
	// CatalogKindArtist - artist discography.
	CatalogKindArtist
	// CatalogKindLabel - label discography.
	CatalogKindLabel
	// CatalogKindPlaylist - playlist.
	CatalogKindPlaylist
)

// String returns a human-readable representation of the CatalogKind.
func (k CatalogKind) String() string {
	switch k {
	case CatalogKindUnknown:
		return "unknown"
	case CatalogKindTrack:
		return "track"
	case CatalogKindAlbum:
		return "album"
	case CatalogKindArtist:
		return "artist"
	case CatalogKindLabel:
		return "label"
	case CatalogKindPlaylist:
		return "playlist"
	default:
		return fmt.Sprintf("unknown: %d", k)
	}
}

// CatalogRef is a parsed catalog URL.
type CatalogRef struct {
	// Kind is the kind of the referenced item.
	Kind CatalogKind
	// ID is the provider identifier of the item.
	ID string
}

// String returns "kind:id".
func (r *CatalogRef) String() string {
	if r == nil {
		return ""
	}

	return r.Kind.String() + ":" + r.ID
}

// ItemKind is the variant tag of an ItemRecord.
type ItemKind uint8

const (
	// ItemKindTrack - track record.
	ItemKindTrack ItemKind = iota + 1
	// ItemKindAlbum - album record.
	ItemKindAlbum
	// ItemKindArtist - artist or label record.
	ItemKindArtist
	// ItemKindPlaylist - playlist record.
	ItemKindPlaylist
)

// String returns a human-readable representation of the ItemKind.
func (k ItemKind) String() string {
	switch k {
	case ItemKindTrack:
		return "track"
	case ItemKindAlbum:
		return "album"
	case ItemKindArtist:
		return "artist"
	case ItemKindPlaylist:
		return "playlist"
	default:
		return fmt.Sprintf("unknown: %d", k)
	}
}

// TrackPayload holds the track-specific fields of an ItemRecord.
type TrackPayload struct {
	// Number is the position on its disc.
	Number int64
	// DiscNumber is the disc the track belongs to.
	DiscNumber int64
	// Duration is the length in seconds.
	Duration int64
	// ArtistName is the performer of the track.
	ArtistName string
	// AlbumID is the parent album identifier.
	AlbumID string
	// AlbumTitle is the parent album title.
	AlbumTitle string
	// AlbumArtist is the main artist of the parent album.
	AlbumArtist string
	// AlbumTrackCount is the number of tracks on the parent album.
	AlbumTrackCount int64
	// ReleaseDate is the original release date (YYYY-MM-DD).
	ReleaseDate string
	// Genre is the album genre.
	Genre string
	// Label is the releasing label.
	Label string
	// ISRC is the recording code.
	ISRC string
	// Copyright is the copyright notice.
	Copyright string
	// CoverURL is the large cover art of the parent album.
	CoverURL string
}

// AlbumPayload holds the album-specific fields of an ItemRecord.
type AlbumPayload struct {
	// ArtistName is the main album artist.
	ArtistName string
	// ReleaseDate is the original release date (YYYY-MM-DD).
	ReleaseDate string
	// Genre is the album genre.
	Genre string
	// Label is the releasing label.
	Label string
	// UPC is the product code.
	UPC string
	// CoverURL is the large cover art.
	CoverURL string
	// TrackCount is the number of tracks.
	TrackCount int64
}

// ArtistPayload holds the discography-specific fields of an ItemRecord.
type ArtistPayload struct {
	// IsLabel is true for label discographies.
	IsLabel bool
	// Releases are the releases kept by the selector, fetched lazily.
	Releases []*ReleaseCandidate
}

// PlaylistPayload holds the playlist-specific fields of an ItemRecord.
type PlaylistPayload struct {
	// Owner is the playlist creator.
	Owner string
	// Description is the playlist description.
	Description string
	// TrackCount is the announced number of tracks.
	TrackCount int64
}

// ItemRecord is a track, album, artist or playlist node owned by a single run.
// Exactly one payload pointer matches Kind.
type ItemRecord struct {
	// Kind is the variant tag.
	Kind ItemKind
	// Provider is the provider name used as a path segment.
	Provider string
	// ID is the provider identifier.
	ID string
	// Title is the display title.
	Title string
	// Children are the ordered sub-items, empty for a track.
	Children []*ItemRecord
	// PosterRef is the notifier handle of the announcement posted for this item.
	PosterRef string
	// Track is set for track records.
	Track *TrackPayload
	// Album is set for album records.
	Album *AlbumPayload
	// Artist is set for artist and label records.
	Artist *ArtistPayload
	// Playlist is set for playlist records.
	Playlist *PlaylistPayload
	// folderPath is the staging location, assigned once.
	folderPath string
	// archivePath is the archive replacing the folder after zipping.
	archivePath string
}

// NewTrackRecord builds a track record.
func NewTrackRecord(provider, id, title string, payload *TrackPayload) *ItemRecord {
	if payload == nil {
		payload = new(TrackPayload)
	}

	return &ItemRecord{
		Kind:     ItemKindTrack,
		Provider: provider,
		ID:       id,
		Title:    title,
		Track:    payload,
	}
}

// NewAlbumRecord builds an album record with its ordered tracks.
func NewAlbumRecord(provider, id, title string, payload *AlbumPayload, tracks []*ItemRecord) *ItemRecord {
	if payload == nil {
		payload = new(AlbumPayload)
	}

	return &ItemRecord{
		Kind:     ItemKindAlbum,
		Provider: provider,
		ID:       id,
		Title:    title,
		Children: tracks,
		Album:    payload,
	}
}

// NewArtistRecord builds an artist or label record; its albums are appended while they are fetched.
func NewArtistRecord(provider, id, title string, payload *ArtistPayload) *ItemRecord {
	if payload == nil {
		payload = new(ArtistPayload)
	}

	return &ItemRecord{
		Kind:     ItemKindArtist,
		Provider: provider,
		ID:       id,
		Title:    title,
		Artist:   payload,
	}
}

// NewPlaylistRecord builds a playlist record with its ordered tracks.
func NewPlaylistRecord(provider, id, title string, payload *PlaylistPayload, tracks []*ItemRecord) *ItemRecord {
	if payload == nil {
		payload = new(PlaylistPayload)
	}

	return &ItemRecord{
		Kind:     ItemKindPlaylist,
		Provider: provider,
		ID:       id,
		Title:    title,
		Children: tracks,
		Playlist: payload,
	}
}

// FolderPath returns the staging location; for a track it is the track file.
func (r *ItemRecord) FolderPath() string {
	return r.folderPath
}

// SetFolderPath assigns the staging location exactly once.
func (r *ItemRecord) SetFolderPath(path string) error {
	if r.folderPath != "" {
		return fmt.Errorf("%w: %s %s", ErrFolderPathAlreadySet, r.Kind, r.ID)
	}

	r.folderPath = path

	return nil
}

// SetArchivePath records the archive that replaced the folder.
func (r *ItemRecord) SetArchivePath(path string) {
	r.archivePath = path
}

// DeliveryPath returns the archive when the folder was zipped, the folder otherwise.
func (r *ItemRecord) DeliveryPath() string {
	if r.archivePath != "" {
		return r.archivePath
	}

	return r.folderPath
}

// String returns a short description used in logs.
func (r *ItemRecord) String() string {
	return fmt.Sprintf("%s '%s' (ID: %s)", r.Kind, r.Title, r.ID)
}

// Discography is the raw release list of an artist or a label.
type Discography struct {
	// ID is the artist or label identifier.
	ID string
	// Name is the artist or label name.
	Name string
	// IsLabel is true for label discographies.
	IsLabel bool
	// Candidates are every listed release in provider order.
	Candidates []*ReleaseCandidate
}

// RunState is a state of the acquisition state machine.
type RunState uint8

const (
	// RunStateResolving - parsing the URL and fetching the defining metadata.
	RunStateResolving RunState = iota + 1
	// RunStateExpanding - building the child list.
	RunStateExpanding
	// RunStateFetchingItem - fetching children one by one.
	RunStateFetchingItem
	// RunStateZipping - archiving the completed folder.
	RunStateZipping
	// RunStateDelivering - handing the result to the dispatcher.
	RunStateDelivering
	// RunStateDone - finished successfully.
	RunStateDone
	// RunStateFailed - finished with an error.
	RunStateFailed
)

// String returns a human-readable representation of the RunState.
func (s RunState) String() string {
	switch s {
	case RunStateResolving:
		return "Resolving"
	case RunStateExpanding:
		return "Expanding"
	case RunStateFetchingItem:
		return "FetchingItem"
	case RunStateZipping:
		return "Zipping"
	case RunStateDelivering:
		return "Delivering"
	case RunStateDone:
		return "Done"
	case RunStateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("unknown: %d", s)
	}
}

// IsTerminal reports whether no transition leaves the state.
func (s RunState) IsTerminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// ProgressEvent is emitted after every fetched item.
type ProgressEvent struct {
	// Index is the 1-based position of the item.
	Index int
	// Total is the number of items.
	Total int
	// Title is the item title.
	Title string
}

// ItemFailure is a non-fatal failure of one child.
type ItemFailure struct {
	// ItemID is the failed item.
	ItemID string
	// Title is the failed item title.
	Title string
	// Phase is the step that failed.
	Phase string
	// Err is the cause.
	Err error
}

// RunReport is the outcome of one run.
type RunReport struct {
	// RequestID namespaces the run staging folder.
	RequestID string
	// URL is the requested URL.
	URL string
	// Ref is the parsed reference, nil when the URL was invalid.
	Ref *CatalogRef
	// State is the terminal state.
	State RunState
	// States lists every state the run went through.
	States []RunState
	// Progress lists every emitted progress event.
	Progress []ProgressEvent
	// Results are the successful deliveries.
	Results []*delivery.Result
	// Failures are the recorded item failures.
	Failures []ItemFailure
	// Err is the terminal error of a failed run.
	Err error
	// StartedAt is when the run began.
	StartedAt time.Time
	// FinishedAt is when the run ended.
	FinishedAt time.Time
}

// Links returns every link of every delivery in order.
func (r *RunReport) Links() []string {
	var links []string

	for _, result := range r.Results {
		links = append(links, result.Links()...)
	}

	return links
}

// DownloadError represents a single error that occurred during a session.
type DownloadError struct {
	// Category is the kind of item that failed.
	Category ItemKind
	// ItemID is the unique identifier of the item.
	ItemID string
	// ItemTitle is the human-readable title.
	ItemTitle string
	// ItemURL is the URL of the failed request.
	ItemURL string
	// ErrorMessage is the error text.
	ErrorMessage string
	// Phase indicates when the error occurred.
	Phase string
	// ParentCategory is the kind of the parent collection.
	ParentCategory ItemKind
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the session began.
	StartTime time.Time
	// EndTime is when the session completed.
	EndTime time.Time
	// RunsDone is the number of successful runs.
	RunsDone int64
	// RunsFailed is the number of failed runs.
	RunsFailed int64
	// TotalTracksProcessed is the total number of tracks attempted.
	TotalTracksProcessed int64
	// TracksDownloaded is the number of tracks successfully downloaded.
	TracksDownloaded int64
	// TracksFailed is the number of tracks that failed.
	TracksFailed int64
	// TotalBytesDownloaded is the total size of downloaded content in bytes.
	TotalBytesDownloaded int64
	// Deliveries is the number of successful deliveries.
	Deliveries int64
	// Errors holds detailed information about every error.
	Errors []DownloadError
}
