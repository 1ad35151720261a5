package qobuz

import (
	"context"
	"fmt"
)

// runAlbum acquires an album requested directly.
func (r *run) runAlbum(ctx context.Context, albumID string) error {
	album, err := r.deps.Resolver.GetAlbum(ctx, albumID)
	if err != nil {
		return err
	}

	r.resolved(ctx, album)
	r.transition(ctx, RunStateExpanding)

	folder := r.paths.albumFolder("", album.Album.ArtistName, album.Title)

	return r.acquireAlbum(ctx, album, folder, r.plan)
}

// acquireAlbum fetches every track of album into folder, then archives and delivers it according to plan.
func (r *run) acquireAlbum(ctx context.Context, album *ItemRecord, folder string, plan DeliveryPlan) error {
	if err := album.SetFolderPath(folder); err != nil {
		return withPhase(phasePreparingFolder, err)
	}

	if len(album.Children) == 0 {
		return fmt.Errorf("%w: album %s has no tracks", ErrNothingFetched, album.ID)
	}

	if err := prepareFolder(folder); err != nil {
		return err
	}

	r.transition(ctx, RunStateFetchingItem)

	completed, err := r.fetchChildren(ctx, album, func(*ItemRecord) string { return folder }, plan)
	if err != nil {
		return err
	}

	if completed == 0 {
		return fmt.Errorf("%w: %s", ErrNothingFetched, album)
	}

	return r.finishCollection(ctx, album, plan)
}
