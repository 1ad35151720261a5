package qobuz

import (
	"context"
	"os"
	"path/filepath"

	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// runTrack acquires and delivers a single track.
func (r *run) runTrack(ctx context.Context, trackID string) error {
	track, err := r.deps.Resolver.GetTrack(ctx, trackID)
	if err != nil {
		return err
	}

	r.resolved(ctx, track)
	r.transition(ctx, RunStateExpanding)

	folder := r.paths.albumFolder("", trackAlbumArtist(track), track.Track.AlbumTitle)

	r.transition(ctx, RunStateFetchingItem)

	err = r.fetchTrack(ctx, track, folder, 1, nil)
	r.progress(ctx, 1, 1, track.Title)

	if err != nil {
		r.deps.Statistics.incrementTrackFailed()

		return err
	}

	r.transition(ctx, RunStateDelivering)

	return r.deliver(ctx, track.FolderPath(), track.Title, false)
}

// fetchTrack downloads one track into folder and tags it.
// position is the 1-based index of the track in its collection.
func (r *run) fetchTrack(
	ctx context.Context,
	track *ItemRecord,
	folder string,
	position int,
	playlist *ItemRecord,
) error {
	content, err := r.deps.Content.FetchContent(ctx, track.ID)
	if err != nil {
		return withPhase(phaseFetchingContent, err)
	}

	tags := trackTags(track, position, playlist)
	filename := r.deps.TemplateManager.GetTrackFilename(ctx, playlist != nil && !r.plan.Sort, tags)
	trackPath := r.paths.trackFile(folder, filename, content.Quality.Extension())

	if err = track.SetFolderPath(trackPath); err != nil {
		return withPhase(phasePreparingFolder, err)
	}

	if err = prepareFolder(folder); err != nil {
		return err
	}

	bytesWritten, err := r.deps.Content.DownloadToPath(ctx, content.URL, trackPath)
	if err != nil {
		return withPhase(phaseDownloading, err)
	}

	err = r.deps.TagProcessor.WriteTags(ctx, &WriteTagsRequest{
		TrackPath: trackPath,
		CoverPath: r.coverFor(ctx, track),
		Quality:   content.Quality,
		TrackTags: tags,
	})
	if err != nil {
		if removeErr := os.Remove(trackPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove untagged track '%s': %v", trackPath, removeErr)
		}

		return withPhase(phaseTagging, err)
	}

	r.deps.Statistics.incrementTrackDownloaded(bytesWritten)

	return nil
}

// coverFor returns the cover art of the track album, downloading it once per run.
// A missing or failed cover yields an empty path.
func (r *run) coverFor(ctx context.Context, track *ItemRecord) string {
	payload := track.Track
	if payload.CoverURL == "" {
		return ""
	}

	key := payload.AlbumID
	if key == "" {
		key = track.ID
	}

	if path, ok := r.covers[key]; ok {
		return path
	}

	coversFolder := r.paths.coversFolder()
	path := filepath.Join(coversFolder, key+defaultCoverExtension)

	if err := os.MkdirAll(coversFolder, constants.DefaultFolderPermissions); err != nil {
		logger.Warnf(ctx, "Failed to create cover folder: %v", err)

		r.covers[key] = ""

		return ""
	}

	if _, err := r.deps.Content.DownloadToPath(ctx, payload.CoverURL, path); err != nil {
		logger.Warnf(ctx, "Failed to download cover art of '%s': %v", payload.AlbumTitle, err)

		path = ""
	}

	r.covers[key] = path

	return path
}

// trackAlbumArtist is the artist folder of a track outside an album request.
func trackAlbumArtist(track *ItemRecord) string {
	if track.Track.AlbumArtist != "" {
		return track.Track.AlbumArtist
	}

	return track.Track.ArtistName
}
