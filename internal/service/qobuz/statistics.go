package qobuz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

const (
	// unknownParentKey is used as a fallback key when parent collection is unknown.
	unknownParentKey = "unknown"
	// summarySeparator frames the summary.
	summarySeparator = "═══════════════════════════════════════════════════════════════"
	// retryCommandName starts the printed retry command.
	retryCommandName = "qobuz-grabber"
)

// SessionStatistics accumulates the statistics of every run of a session.
// It is shared between concurrent runs.
type SessionStatistics struct {
	mu    sync.Mutex
	stats *DownloadStatistics
}

// NewSessionStatistics creates empty statistics starting now.
func NewSessionStatistics() *SessionStatistics {
	return &SessionStatistics{
		stats: &DownloadStatistics{
			StartTime: time.Now(),
		},
	}
}

// Snapshot returns a copy of the current statistics.
func (s *SessionStatistics) Snapshot() DownloadStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *s.stats
	snapshot.Errors = append([]DownloadError(nil), s.stats.Errors...)

	return snapshot
}

// finish marks the end of the session.
func (s *SessionStatistics) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.EndTime = time.Now()
}

// incrementTrackDownloaded increments the downloaded tracks counter and adds bytes.
func (s *SessionStatistics) incrementTrackDownloaded(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TracksDownloaded++
	s.stats.TotalTracksProcessed++
	s.stats.TotalBytesDownloaded += bytes
}

// incrementTrackFailed increments the failed tracks counter.
func (s *SessionStatistics) incrementTrackFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TracksFailed++
	s.stats.TotalTracksProcessed++
}

// incrementDelivery increments the successful deliveries counter.
func (s *SessionStatistics) incrementDelivery() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Deliveries++
}

// recordRun counts a finished run.
func (s *SessionStatistics) recordRun(state RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == RunStateDone {
		s.stats.RunsDone++
	} else {
		s.stats.RunsFailed++
	}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// groupErrors separates track errors from collection errors for better display organization.
func groupErrors(errors []DownloadError) (trackErrors, collectionErrors []DownloadError) {
	for i := range errors {
		if errors[i].Category == ItemKindTrack && errors[i].ParentID != "" {
			trackErrors = append(trackErrors, errors[i])
		} else {
			collectionErrors = append(collectionErrors, errors[i])
		}
	}

	return trackErrors, collectionErrors
}

// PrintDownloadSummary prints a formatted summary of the session.
func (s *SessionStatistics) PrintDownloadSummary(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats

	// If nothing was attempted, don't print summary.
	if stats.RunsDone+stats.RunsFailed == 0 && stats.TotalTracksProcessed == 0 {
		return
	}

	if stats.EndTime.IsZero() {
		stats.EndTime = time.Now()
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	printSummaryHeader(ctx, wasInterrupted)
	printRunStatistics(ctx, stats)
	printTrackStatistics(ctx, stats)
	printDataTransferStatistics(ctx, stats)
	logger.Info(ctx, summarySeparator)
	printErrorDetails(ctx, stats)
	printFinalMessage(ctx, wasInterrupted, stats)
}

// printSummaryHeader prints the summary header.
func printSummaryHeader(ctx context.Context, wasInterrupted bool) {
	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	if wasInterrupted {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summarySeparator)
}

// printRunStatistics prints run and delivery counters.
func printRunStatistics(ctx context.Context, stats *DownloadStatistics) {
	logger.Infof(ctx, "Requests:         %d total", stats.RunsDone+stats.RunsFailed)
	logger.Infof(ctx, "  Done:            %d", stats.RunsDone)

	if stats.RunsFailed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.RunsFailed)
	}

	if stats.Deliveries > 0 {
		logger.Infof(ctx, "  Deliveries:      %d", stats.Deliveries)
	}
}

// printTrackStatistics prints track download statistics.
func printTrackStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalTracksProcessed == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Tracks:           %d total processed", stats.TotalTracksProcessed)

	if stats.TracksDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:      %d", stats.TracksDownloaded)
	}

	if stats.TracksFailed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.TracksFailed)
	}

	successRate := float64(stats.TracksDownloaded) / float64(stats.TotalTracksProcessed) * 100
	logger.Infof(ctx, "  Success Rate:    %.1f%%", successRate)
}

// printDataTransferStatistics prints data transfer statistics.
func printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	if stats.StartTime.IsZero() || stats.EndTime.IsZero() {
		return
	}

	duration := stats.EndTime.Sub(stats.StartTime)

	// Only show if duration is meaningful (> 100ms).
	if duration <= 100*time.Millisecond {
		return
	}

	logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

	if stats.TotalBytesDownloaded > 0 {
		bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
		logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
	}
}

// printErrorDetails prints detailed error information if any errors occurred.
func printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	trackErrors, collectionErrors := groupErrors(stats.Errors)

	printCollectionErrors(ctx, collectionErrors)
	printTrackErrors(ctx, trackErrors)

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	printRetryCommand(ctx, stats.Errors)
}

// printCollectionErrors prints request-level errors.
func printCollectionErrors(ctx context.Context, collectionErrors []DownloadError) {
	if len(collectionErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "REQUEST ERRORS:")

	for i := range collectionErrors {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, collectionErrors[i].Category, collectionErrors[i].ItemTitle)

		if collectionErrors[i].ItemURL != "" {
			logger.Errorf(ctx, "      URL: %s", collectionErrors[i].ItemURL)
		}

		logger.Errorf(ctx, "      ID: %s", collectionErrors[i].ItemID)
		logger.Errorf(ctx, "      Phase: %s", collectionErrors[i].Phase)
		logger.Errorf(ctx, "      Error: %s", collectionErrors[i].ErrorMessage)
	}
}

// printTrackErrors prints track-level errors grouped by parent collection, in first-seen order.
func printTrackErrors(ctx context.Context, trackErrors []DownloadError) {
	if len(trackErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "TRACK ERRORS:")

	var (
		order        []string
		parentGroups = make(map[string][]DownloadError)
	)

	for i := range trackErrors {
		key := trackErrors[i].ParentID
		if key == "" {
			key = unknownParentKey
		}

		if _, ok := parentGroups[key]; !ok {
			order = append(order, key)
		}

		parentGroups[key] = append(parentGroups[key], trackErrors[i])
	}

	for _, key := range order {
		printParentGroupErrors(ctx, parentGroups[key])
	}
}

// printParentGroupErrors prints errors for tracks from a specific parent collection.
func printParentGroupErrors(ctx context.Context, errs []DownloadError) {
	firstErr := errs[0]

	logger.Info(ctx, "")

	if firstErr.ParentTitle != "" {
		logger.Errorf(ctx, "  From %s: %s (ID: %s)",
			firstErr.ParentCategory, firstErr.ParentTitle, firstErr.ParentID)
	} else {
		logger.Errorf(ctx, "  From unknown collection:")
	}

	for i := range errs {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "    [%d] %s", i+1, errs[i].ItemTitle)
		logger.Errorf(ctx, "        Track ID: %s", errs[i].ItemID)
		logger.Errorf(ctx, "        Phase: %s", errs[i].Phase)
		logger.Errorf(ctx, "        Error: %s", errs[i].ErrorMessage)
	}
}

// retryURLs returns the unique URLs of failed requests and collections.
func retryURLs(errors []DownloadError) []string {
	var (
		seen = make(map[string]bool)
		urls []string
	)

	for i := range errors {
		url := errors[i].ItemURL
		if url == "" || seen[url] {
			continue
		}

		seen[url] = true
		urls = append(urls, url)
	}

	return urls
}

// printRetryCommand prints a command to retry failed requests.
func printRetryCommand(ctx context.Context, errors []DownloadError) {
	urls := retryURLs(errors)
	if len(urls) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "To retry only failed downloads, run:")
	logger.Info(ctx, "")
	logger.Infof(ctx, "  %s %s", retryCommandName, strings.Join(urls, " "))
}

// printFinalMessage prints a helpful message based on download results.
func printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.TracksDownloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d track(s) before interruption.", stats.TracksDownloaded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.RunsDone > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	}
}
