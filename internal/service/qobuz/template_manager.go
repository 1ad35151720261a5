package qobuz

//go:generate $MOCKGEN -source=template_manager.go -destination=mocks/template_manager_mock.go

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"strconv"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// releaseYearLength is the length of the year prefix of a release date.
const releaseYearLength = 4

// TemplateManager builds track file names from track tags.
type TemplateManager interface {
	// GetTrackFilename generates a file name (without extension) for a track.
	// Playlist tracks use the playlist template.
	GetTrackFilename(ctx context.Context, isPlaylist bool, trackTags map[string]string) string
}

// TemplateManagerImpl implements the TemplateManager interface.
type TemplateManagerImpl struct {
	// trackFilenameTemplate is the template for album track file names.
	trackFilenameTemplate *template.Template
	// playlistFilenameTemplate is the template for playlist track file names.
	playlistFilenameTemplate *template.Template
	// defaultTrackFilenameTemplate is the fallback template for album track file names.
	defaultTrackFilenameTemplate *template.Template
	// defaultPlaylistFilenameTemplate is the fallback template for playlist track file names.
	defaultPlaylistFilenameTemplate *template.Template
}

// NewTemplateManager creates a TemplateManager from the configured templates.
// A template that fails to parse is replaced by its default.
func NewTemplateManager(ctx context.Context, cfg *config.Config) TemplateManager {
	defaultTrackFilenameTemplate := template.Must(
		template.New("defaultTrackFilenameTemplate").Parse(config.DefaultTrackFilenameTemplate))
	defaultPlaylistFilenameTemplate := template.Must(
		template.New("defaultPlaylistFilenameTemplate").Parse(config.DefaultPlaylistFilenameTemplate))

	trackFilenameTemplate, err := template.New("trackFilenameTemplate").Parse(cfg.TrackFilenameTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse track filename template, using default: %v", err)
	}

	playlistFilenameTemplate, err := template.New("playlistFilenameTemplate").Parse(cfg.PlaylistFilenameTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse playlist filename template, using default: %v", err)
	}

	return &TemplateManagerImpl{
		trackFilenameTemplate:           trackFilenameTemplate,
		playlistFilenameTemplate:        playlistFilenameTemplate,
		defaultTrackFilenameTemplate:    defaultTrackFilenameTemplate,
		defaultPlaylistFilenameTemplate: defaultPlaylistFilenameTemplate,
	}
}

// GetTrackFilename generates a file name (without extension) for a track.
func (s *TemplateManagerImpl) GetTrackFilename(
	ctx context.Context,
	isPlaylist bool,
	trackTags map[string]string,
) string {
	textBuilder, defaultTextBuilder := s.trackFilenameTemplate, s.defaultTrackFilenameTemplate
	if isPlaylist {
		textBuilder, defaultTextBuilder = s.playlistFilenameTemplate, s.defaultPlaylistFilenameTemplate
	}

	var buffer bytes.Buffer
	if textBuilder != nil {
		if err := textBuilder.Execute(&buffer, trackTags); err != nil {
			logger.Errorf(ctx, "Failed to execute template, using default: %v", err)

			buffer.Reset()
			_ = defaultTextBuilder.Execute(&buffer, trackTags) //nolint:errcheck // Default template is always valid.
		}
	} else {
		_ = defaultTextBuilder.Execute(&buffer, trackTags) //nolint:errcheck // Default template is always valid.
	}

	// Unescape HTML entities in the generated file name.
	return html.UnescapeString(buffer.String())
}

// trackTags returns the templating and tagging values of a track.
// position is the 1-based index inside its collection, used when the track has no number.
func trackTags(track *ItemRecord, position int, playlist *ItemRecord) map[string]string {
	payload := track.Track

	number := payload.Number
	if playlist != nil || number <= 0 {
		number = int64(position)
	}

	releaseYear := ""
	if len(payload.ReleaseDate) >= releaseYearLength {
		releaseYear = payload.ReleaseDate[:releaseYearLength]
	}

	result := map[string]string{
		"trackID":        track.ID,
		"trackTitle":     track.Title,
		"trackArtist":    payload.ArtistName,
		"trackNumber":    strconv.FormatInt(number, 10),
		"trackNumberPad": fmt.Sprintf("%0*d", trackNumberPaddingWidth, number),
		"trackCount":     "",
		"discNumber":     "",
		"albumID":        payload.AlbumID,
		"albumTitle":     payload.AlbumTitle,
		"albumArtist":    payload.AlbumArtist,
		"releaseDate":    payload.ReleaseDate,
		"releaseYear":    releaseYear,
		"genre":          payload.Genre,
		"recordLabel":    payload.Label,
		"copyright":      payload.Copyright,
		"isrc":           payload.ISRC,
		"playlistTitle":  "",
	}

	if payload.AlbumTrackCount > 0 {
		result["trackCount"] = strconv.FormatInt(payload.AlbumTrackCount, 10)
	}

	if payload.DiscNumber > 0 {
		result["discNumber"] = strconv.FormatInt(payload.DiscNumber, 10)
	}

	if playlist != nil {
		result["playlistTitle"] = playlist.Title
		result["trackCount"] = strconv.Itoa(len(playlist.Children))
	}

	return result
}
