package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/extract"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
	"github.com/sourcegraph/conc/panics"
)

// ExtractResult is the outcome of fetching every ticker once.
type ExtractResult struct {
	Dataset transform.Dataset
	// Empty lists tickers the provider had no rows for.
	Empty []string
	// Err joins the per-ticker fetch failures. Nil if none failed.
	Err error
}

// Extract fetches tickers one at a time over [start, end]. A failing or
// empty ticker is logged and skipped, the rest are normalized and
// concatenated in input order.
func Extract(ctx context.Context, source extract.Source, tickers []string, start, end time.Time, logger *slog.Logger) ExtractResult {
	var (
		parts     []transform.Dataset
		empty     []string
		errorList []error
	)

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			errorList = append(errorList, fmt.Errorf("fetch of %s not started: %w", ticker, err))
			continue
		}

		logger.Info("Fetching data", "ticker", ticker, "provider", source.Name())

		bars, err := fetchOne(ctx, source, ticker, start, end)
		if err != nil {
			logger.Error("Failed to fetch data", "ticker", ticker, "error", err)
			errorList = append(errorList, fmt.Errorf("error fetching history for ticker %s: %w", ticker, err))
			continue
		}
		if len(bars) == 0 {
			logger.Warn("No data found", "ticker", ticker)
			empty = append(empty, ticker)
			continue
		}

		ds := transform.Normalize(ticker, bars)
		logger.Info("Fetched rows", "ticker", ticker, "rows", len(ds))
		parts = append(parts, ds)
	}

	return ExtractResult{
		Dataset: transform.Concat(parts...),
		Empty:   empty,
		Err:     errors.Join(errorList...),
	}
}

// fetchOne calls the source and turns a panic inside it into an error.
func fetchOne(ctx context.Context, source extract.Source, ticker string, start, end time.Time) (bars []extract.Bar, err error) {
	var pc panics.Catcher
	pc.Try(func() {
		bars, err = source.DailyHistory(ctx, ticker, start, end)
	})
	if recovered := pc.Recovered(); recovered != nil {
		return nil, recovered.AsError()
	}
	return bars, err
}
