package qobuz

import (
	"context"
	"fmt"
)

// runPlaylist acquires the tracks of a playlist.
func (r *run) runPlaylist(ctx context.Context, playlistID string) error {
	playlist, err := r.deps.Resolver.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	r.resolved(ctx, playlist)
	r.transition(ctx, RunStateExpanding)

	folder := r.paths.collectionFolder(playlist.Title)
	if err = playlist.SetFolderPath(folder); err != nil {
		return err
	}

	if len(playlist.Children) == 0 {
		return fmt.Errorf("%w: playlist %s has no tracks", ErrNothingFetched, playlist.ID)
	}

	// Sorted tracks go to <artist>/<album>, inside the playlist folder only when it is archived.
	sortRoot := r.paths.scopeRoot
	if r.plan.Archive {
		sortRoot = folder
	}

	folderFor := func(track *ItemRecord) string {
		if !r.plan.Sort {
			return folder
		}

		return r.paths.nestedFolder(sortRoot, trackAlbumArtist(track), track.Track.AlbumTitle)
	}

	r.transition(ctx, RunStateFetchingItem)

	completed, err := r.fetchChildren(ctx, playlist, folderFor, r.plan)
	if err != nil {
		return err
	}

	if completed == 0 {
		return fmt.Errorf("%w: %s", ErrNothingFetched, playlist)
	}

	return r.finishCollection(ctx, playlist, r.plan)
}
