package qobuz

import (
	"context"
	"fmt"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// runDiscography acquires the selected releases of an artist or a label.
func (r *run) runDiscography(ctx context.Context, ref *CatalogRef) error {
	var (
		discography *Discography
		err         error
	)

	if ref.Kind == CatalogKindLabel {
		discography, err = r.deps.Resolver.GetLabelReleases(ctx, ref.ID)
	} else {
		discography, err = r.deps.Resolver.GetArtistReleases(ctx, ref.ID)
	}

	if err != nil {
		return err
	}

	r.transition(ctx, RunStateExpanding)

	// Labels release many artists, so the credited artist is not checked.
	requestedArtistName := discography.Name
	if discography.IsLabel {
		requestedArtistName = ""
	}

	selected := Select(requestedArtistName, discography.Candidates, SelectorOptions{
		PreferSmallerFiles:   r.cfg.PreferSmallerFiles,
		ExcludeBonusEditions: r.cfg.ExcludeBonusEditions,
	})

	logger.Infof(ctx, "Selected %d of %d releases of '%s'",
		len(selected), len(discography.Candidates), discography.Name)

	record := NewArtistRecord(r.cfg.ProviderName, discography.ID, discography.Name, &ArtistPayload{
		IsLabel:  discography.IsLabel,
		Releases: selected,
	})

	r.resolved(ctx, record)

	folder := r.paths.collectionFolder(discography.Name)
	if err = record.SetFolderPath(folder); err != nil {
		return err
	}

	if len(selected) == 0 {
		return fmt.Errorf("%w: %s has no selectable release", ErrNothingFetched, record)
	}

	// Albums follow their own plan only when the discography is not delivered as a whole.
	var albumPlan DeliveryPlan
	if r.plan.PerAlbum {
		albumPlan = PlanFor(CatalogKindAlbum, r.cfg)
	}

	r.transition(ctx, RunStateFetchingItem)

	completed, err := r.fetchReleases(ctx, record, folder, albumPlan)
	if err != nil {
		return err
	}

	if completed == 0 {
		return fmt.Errorf("%w: %s", ErrNothingFetched, record)
	}

	if r.plan.PerAlbum {
		return nil
	}

	return r.finishCollection(ctx, record, r.plan)
}

// fetchReleases fetches the selected releases one by one, lazily resolving each album.
// It returns the number of albums with at least one fetched track.
func (r *run) fetchReleases(
	ctx context.Context,
	record *ItemRecord,
	folder string,
	albumPlan DeliveryPlan,
) (int, error) {
	var (
		completed int
		releases  = record.Artist.Releases
	)

	for i, release := range releases {
		select {
		case <-ctx.Done():
			return completed, ctx.Err()
		default:
		}

		logger.Infof(ctx, "Downloading release '%s' (%d / %d)", release.Title, i+1, len(releases))

		album, err := r.deps.Resolver.GetAlbum(ctx, release.ID)
		if err != nil {
			placeholder := NewAlbumRecord(r.cfg.ProviderName, release.ID, release.Title, nil, nil)
			r.recordFailure(ctx, record, placeholder, phaseFetchingMetadata, err)
			r.progress(ctx, i+1, len(releases), release.Title)

			continue
		}

		record.Children = append(record.Children, album)

		err = r.acquireAlbum(ctx, album, r.paths.albumFolder(folder, "", album.Title), albumPlan)
		if err != nil {
			if ctx.Err() != nil {
				return completed, ctx.Err()
			}

			r.recordFailure(ctx, record, album, phaseDownloading, err)
		} else {
			completed++
		}

		r.progress(ctx, i+1, len(releases), album.Title)
	}

	return completed, nil
}
