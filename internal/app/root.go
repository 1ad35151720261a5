package app

import (
	"context"

	qobuz_client "github.com/oshokin/qobuz-grabber/internal/client/qobuz"
	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/history"
	"github.com/oshokin/qobuz-grabber/internal/logger"
	"github.com/oshokin/qobuz-grabber/internal/service/delivery"
	"github.com/oshokin/qobuz-grabber/internal/service/notify"
	qobuz_service "github.com/oshokin/qobuz-grabber/internal/service/qobuz"
)

// ExecuteRootCommand is the entry point for the application.
// It wires the Qobuz client, the acquisition pipeline and the delivery backend,
// then runs every provided URL.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, urls []string) {
	qobuzClient, err := qobuz_client.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize qobuz client: %v", err)
	}

	backend, err := delivery.NewBackend(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize delivery backend: %v", err)
	}

	store := openHistory(ctx, cfg)
	defer closeHistory(ctx, store)

	locator := qobuz_service.NewLocator()
	stats := qobuz_service.NewSessionStatistics()

	orchestrator := qobuz_service.NewOrchestrator(cfg, &qobuz_service.OrchestratorDependencies{
		Locator:         locator,
		Resolver:        qobuz_service.NewMetadataResolver(qobuzClient, cfg.ProviderName),
		Content:         qobuz_service.NewContentFetcher(cfg, qobuzClient),
		TagProcessor:    qobuz_service.NewTagProcessor(),
		TemplateManager: qobuz_service.NewTemplateManager(ctx, cfg),
		Dispatcher:      delivery.NewDispatcher(cfg, backend),
		Notifier:        notify.NewLogNotifier(logger.Logger()),
		History:         store,
		Statistics:      stats,
	})

	s := qobuz_service.NewService(cfg, locator, orchestrator, stats)

	// Ensure statistics are ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	s.DownloadURLs(ctx, urls)
}

// openHistory opens the run history, falling back to a no-op store.
func openHistory(ctx context.Context, cfg *config.Config) history.Store {
	if cfg.HistoryDBPath == "" {
		return history.NewNopStore()
	}

	store, err := history.Open(ctx, cfg.HistoryDBPath)
	if err != nil {
		logger.Warnf(ctx, "Run history is disabled: %v", err)

		return history.NewNopStore()
	}

	return store
}

func closeHistory(ctx context.Context, store history.Store) {
	if err := store.Close(); err != nil {
		logger.Warnf(ctx, "Failed to close run history: %v", err)
	}
}
