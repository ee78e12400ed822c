package pipeline

import (
	"context"
	"log/slog"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/load"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
)

// Save replaces table with ds and returns the number of rows written.
// Store errors are logged and reported as 0 rows. The store is always
// closed before returning.
func Save(ctx context.Context, open load.Opener, ds transform.Dataset, table string, logger *slog.Logger) int {
	store, err := open(ctx)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		return 0
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store", "error", err)
		}
	}()

	n, err := store.ReplaceTable(ctx, table, ds)
	if err != nil {
		logger.Error("Failed to save data", "table", table, "error", err)
		return 0
	}

	if n > 0 {
		logger.Info("Saved rows", "table", table, "rows", n, "driver", store.Driver)
	}
	return n
}
