package qobuz

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// Service processes a batch of catalog URLs.
type Service interface {
	// DownloadURLs runs every URL through the orchestrator and returns the reports in input order.
	DownloadURLs(ctx context.Context, urls []string) []*RunReport
	// PrintDownloadSummary prints a formatted summary of the session statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the Service interface.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// locator expands URL lists.
	locator Locator
	// orchestrator acquires and delivers one URL.
	orchestrator Orchestrator
	// stats accumulates statistics of every run.
	stats *SessionStatistics
}

// NewService creates a service running URLs through orchestrator.
func NewService(
	cfg *config.Config,
	locator Locator,
	orchestrator Orchestrator,
	stats *SessionStatistics,
) Service {
	return &ServiceImpl{
		cfg:          cfg,
		locator:      locator,
		orchestrator: orchestrator,
		stats:        stats,
	}
}

// DownloadURLs runs every URL through the orchestrator and returns the reports in input order.
// Up to MaxConcurrentRuns URLs are processed at the same time.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, urls []string) []*RunReport {
	defer s.stats.finish()

	urls, err := s.locator.ExpandURLs(urls)
	if err != nil {
		logger.Errorf(ctx, "Failed to read URLs: %v", err)

		return nil
	}

	if err = os.MkdirAll(s.cfg.DownloadBaseDir, constants.DefaultFolderPermissions); err != nil {
		logger.Errorf(ctx, "Failed to create download base dir: %v", err)

		return nil
	}

	logger.Infof(ctx, "Starting download process for %d URL(s)", len(urls))

	var (
		reports = make([]*RunReport, len(urls))
		group   errgroup.Group
	)

	group.SetLimit(int(max(s.cfg.MaxConcurrentRuns, 1)))

	for i, url := range urls {
		// Stop scheduling once the context is canceled (CTRL+C pressed).
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			reports[i] = s.orchestrator.Run(ctx, url)

			return nil
		})
	}

	_ = group.Wait() //nolint:errcheck // Runs report their errors, they never return one.

	logger.Info(ctx, "Download process completed")

	result := make([]*RunReport, 0, len(reports))

	for _, report := range reports {
		if report != nil {
			result = append(result, report)
		}
	}

	return result
}

// PrintDownloadSummary prints a formatted summary of the session statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.stats.PrintDownloadSummary(ctx)
}
