package app

import (
	"context"
	"fmt"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/history"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// ExecuteHistoryCommand prints the latest runs recorded in the history database.
func ExecuteHistoryCommand(ctx context.Context, cfg *config.Config, limit int) {
	if cfg.HistoryDBPath == "" {
		logger.Info(ctx, "Run history is disabled, set history_db_path in the configuration file")
		return
	}

	store, err := history.Open(ctx, cfg.HistoryDBPath)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open run history: %v", err)
		return
	}

	defer closeHistory(ctx, store)

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		logger.Fatalf(ctx, "Failed to list runs: %v", err)
		return
	}

	if len(runs) == 0 {
		logger.Info(ctx, "No runs recorded yet")
		return
	}

	fmt.Println(history.RenderTable(runs)) //nolint:forbidigo // The table is the command output.
}
