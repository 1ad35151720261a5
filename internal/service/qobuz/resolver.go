package qobuz

//go:generate $MOCKGEN -source=resolver.go -destination=mocks/resolver_mock.go

import (
	"context"
	"fmt"
	"strconv"

	"github.com/oshokin/qobuz-grabber/internal/client/qobuz"
)

// MetadataResolver turns catalog identifiers into item records.
type MetadataResolver interface {
	// GetTrack returns a track record.
	GetTrack(ctx context.Context, trackID string) (*ItemRecord, error)
	// GetAlbum returns an album record with its ordered tracks.
	GetAlbum(ctx context.Context, albumID string) (*ItemRecord, error)
	// GetArtistReleases returns the raw discography of an artist.
	GetArtistReleases(ctx context.Context, artistID string) (*Discography, error)
	// GetLabelReleases returns the raw discography of a label.
	GetLabelReleases(ctx context.Context, labelID string) (*Discography, error)
	// GetPlaylist returns a playlist record with its ordered tracks.
	GetPlaylist(ctx context.Context, playlistID string) (*ItemRecord, error)
}

// MetadataResolverImpl maps Qobuz API responses to item records.
type MetadataResolverImpl struct {
	client   qobuz.Client
	provider string
}

// NewMetadataResolver creates a new MetadataResolver.
func NewMetadataResolver(client qobuz.Client, provider string) MetadataResolver {
	return &MetadataResolverImpl{
		client:   client,
		provider: provider,
	}
}

// GetTrack returns a track record.
func (r *MetadataResolverImpl) GetTrack(ctx context.Context, trackID string) (*ItemRecord, error) {
	track, err := r.client.GetTrack(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, err)
	}

	if !track.Streamable {
		return nil, fmt.Errorf("%w: track %s", ErrNotStreamable, trackID)
	}

	return r.trackRecord(track, track.Album), nil
}

// GetAlbum returns an album record with its ordered tracks.
func (r *MetadataResolverImpl) GetAlbum(ctx context.Context, albumID string) (*ItemRecord, error) {
	album, err := r.client.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", albumID, err)
	}

	if !album.Streamable {
		return nil, fmt.Errorf("%w: album %s", ErrNotStreamable, albumID)
	}

	var tracks []*ItemRecord

	if album.Tracks != nil {
		tracks = make([]*ItemRecord, 0, len(album.Tracks.Items))

		for _, track := range album.Tracks.Items {
			if track == nil {
				continue
			}

			tracks = append(tracks, r.trackRecord(track, album))
		}
	}

	payload := &AlbumPayload{
		ArtistName:  album.ArtistName(),
		ReleaseDate: album.ReleaseDateOriginal,
		Genre:       genreName(album),
		Label:       labelName(album),
		UPC:         album.UPC,
		CoverURL:    coverURL(album),
		TrackCount:  album.TracksCount,
	}

	return NewAlbumRecord(r.provider, album.ID, albumTitle(album), payload, tracks), nil
}

// GetArtistReleases returns the raw discography of an artist.
func (r *MetadataResolverImpl) GetArtistReleases(ctx context.Context, artistID string) (*Discography, error) {
	artist, err := r.client.GetArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artist %s: %w", artistID, err)
	}

	return &Discography{
		ID:         strconv.FormatInt(artist.ID, 10),
		Name:       artist.Name,
		Candidates: releaseCandidates(artist.Albums),
	}, nil
}

// GetLabelReleases returns the raw discography of a label.
func (r *MetadataResolverImpl) GetLabelReleases(ctx context.Context, labelID string) (*Discography, error) {
	label, err := r.client.GetLabel(ctx, labelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get label %s: %w", labelID, err)
	}

	return &Discography{
		ID:         strconv.FormatInt(label.ID, 10),
		Name:       label.Name,
		IsLabel:    true,
		Candidates: releaseCandidates(label.Albums),
	}, nil
}

// GetPlaylist returns a playlist record with its ordered tracks.
func (r *MetadataResolverImpl) GetPlaylist(ctx context.Context, playlistID string) (*ItemRecord, error) {
	playlist, err := r.client.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}

	var tracks []*ItemRecord

	if playlist.Tracks != nil {
		tracks = make([]*ItemRecord, 0, len(playlist.Tracks.Items))

		for _, track := range playlist.Tracks.Items {
			if track == nil {
				continue
			}

			tracks = append(tracks, r.trackRecord(track, track.Album))
		}
	}

	payload := &PlaylistPayload{
		Description: playlist.Description,
		TrackCount:  playlist.TracksCount,
	}

	if playlist.Owner != nil {
		payload.Owner = playlist.Owner.Name
	}

	return NewPlaylistRecord(
		r.provider,
		strconv.FormatInt(playlist.ID, 10),
		playlist.Name,
		payload,
		tracks,
	), nil
}

func (r *MetadataResolverImpl) trackRecord(track *qobuz.Track, album *qobuz.Album) *ItemRecord {
	payload := &TrackPayload{
		Number:      track.TrackNumber,
		DiscNumber:  track.MediaNumber,
		Duration:    track.Duration,
		ReleaseDate: track.ReleaseDateOriginal,
		ISRC:        track.ISRC,
		Copyright:   track.Copyright,
	}

	if track.Performer != nil {
		payload.ArtistName = track.Performer.Name
	}

	if album != nil {
		payload.AlbumID = album.ID
		payload.AlbumTitle = albumTitle(album)
		payload.AlbumArtist = album.ArtistName()
		payload.AlbumTrackCount = album.TracksCount
		payload.Genre = genreName(album)
		payload.Label = labelName(album)
		payload.CoverURL = coverURL(album)

		if payload.ReleaseDate == "" {
			payload.ReleaseDate = album.ReleaseDateOriginal
		}

		if payload.Copyright == "" {
			payload.Copyright = album.Copyright
		}
	}

	if payload.ArtistName == "" {
		payload.ArtistName = payload.AlbumArtist
	}

	return NewTrackRecord(r.provider, strconv.FormatInt(track.ID, 10), track.FullTitle(), payload)
}

func releaseCandidates(albums *qobuz.Page[qobuz.Album]) []*ReleaseCandidate {
	if albums == nil {
		return nil
	}

	result := make([]*ReleaseCandidate, 0, len(albums.Items))

	for _, album := range albums.Items {
		if album == nil {
			continue
		}

		result = append(result, NewReleaseCandidate(
			album.ID,
			album.Title,
			album.Version,
			album.ArtistName(),
			album.MaximumBitDepth,
			album.MaximumSamplingRate,
		))
	}

	return result
}

func albumTitle(album *qobuz.Album) string {
	if album.Version == "" {
		return album.Title
	}

	return album.Title + " (" + album.Version + ")"
}

func genreName(album *qobuz.Album) string {
	if album.Genre == nil {
		return ""
	}

	return album.Genre.Name
}

func labelName(album *qobuz.Album) string {
	if album.Label == nil {
		return ""
	}

	return album.Label.Name
}

func coverURL(album *qobuz.Album) string {
	if album.Image == nil {
		return ""
	}

	return album.Image.Large
}
