package qobuz

import (
	"context"
	"errors"

	"github.com/oshokin/qobuz-grabber/internal/service/delivery"
)

// Common errors for the service layer.
var (
	// ErrInvalidReference indicates that a URL matches no known catalog pattern.
	ErrInvalidReference = errors.New("invalid catalog reference")
	// ErrNotStreamable indicates that the provider refuses to stream an item.
	ErrNotStreamable = errors.New("item is not streamable")
	// ErrItemUnavailable indicates that no content URL could be obtained for an item.
	ErrItemUnavailable = errors.New("item content is unavailable")
	// ErrIO indicates a local filesystem failure.
	ErrIO = delivery.ErrIO
	// ErrDelivery indicates that a delivery backend failed.
	ErrDelivery = delivery.ErrDelivery
	// ErrFormat indicates that an archive could not be created.
	ErrFormat = errors.New("archive creation failed")
	// ErrNothingFetched indicates that every child of a collection failed.
	ErrNothingFetched = errors.New("no item of the collection was fetched")
	// ErrFolderPathAlreadySet indicates a second folder path assignment.
	ErrFolderPathAlreadySet = errors.New("folder path is already set")
	// ErrIncompleteDownload indicates that the downloaded size doesn't match the announced size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrEmptyTrackPath indicates that the track file path is empty.
	ErrEmptyTrackPath = errors.New("track path cannot be empty")
)

// ErrorContext provides context information for download errors.
type ErrorContext struct {
	// Category is the kind of item that failed.
	Category ItemKind
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed request, set for collections.
	ItemURL string
	// Phase indicates when the error occurred (e.g., "fetching metadata", "downloading track").
	Phase string
	// ParentCategory is the kind of the parent collection for tracks.
	ParentCategory ItemKind
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// recordError records an error in the statistics with proper context.
// Context cancellation errors are ignored as they are expected during graceful shutdown.
func (s *SessionStatistics) recordError(errCtx *ErrorContext, err error) {
	if errCtx == nil || err == nil {
		return
	}

	if errors.Is(err, context.Canceled) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Errors = append(s.stats.Errors, DownloadError{
		Category:       errCtx.Category,
		ItemID:         errCtx.ItemID,
		ItemTitle:      errCtx.ItemTitle,
		ItemURL:        errCtx.ItemURL,
		ErrorMessage:   err.Error(),
		Phase:          errCtx.Phase,
		ParentCategory: errCtx.ParentCategory,
		ParentID:       errCtx.ParentID,
		ParentTitle:    errCtx.ParentTitle,
	})
}
