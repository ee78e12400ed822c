package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/extract"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/load"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/utils"
	"github.com/google/uuid"
)

// ErrNoData means every ticker failed or came back empty. Nothing is
// written in that case.
var ErrNoData = errors.New("no data fetched")

type Pipeline struct {
	Source       extract.Source
	Open         load.Opener
	Logger       *slog.Logger
	Tickers      []string
	Window       extract.Window
	Table        string
	timeProvider utils.TimeProvider
}

// RunResult describes one ETL run.
type RunResult struct {
	RunID   string
	Dataset transform.Dataset
	Fetched int
	Stored  int
	Empty   []string
	Failed  error
}

func NewPipeline(config *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*Pipeline, error) {
	source, err := extract.NewSource(config, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating market data source: %w", err)
	}

	window, err := extract.ParseWindow(config.Extract.Window)
	if err != nil {
		return nil, fmt.Errorf("error parsing extract window: %w", err)
	}

	if err := load.ValidateTable(config.Store.Table); err != nil {
		return nil, err
	}

	return &Pipeline{
		Source:       source,
		Open:         load.NewOpener(config.Store, logger),
		Logger:       logger,
		Tickers:      utils.NormalizeTickers(config.Extract.Tickers),
		Window:       window,
		Table:        config.Store.Table,
		timeProvider: timeProvider,
	}, nil
}

// Run fetches every ticker over the trailing window and replaces the table
// with the result. It returns ErrNoData, without touching the store, when
// nothing was fetched.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString()}
	logger := p.Logger.With("run_id", result.RunID)

	end := p.timeProvider.Now()
	start := p.Window.Start(end)
	logger.Info("Starting ETL run",
		"tickers", p.Tickers,
		"window", p.Window.String(),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"))

	extracted := Extract(ctx, p.Source, p.Tickers, start, end, logger)
	result.Dataset = extracted.Dataset
	result.Fetched = len(extracted.Dataset)
	result.Empty = extracted.Empty
	result.Failed = extracted.Err

	if len(extracted.Dataset) == 0 {
		logger.Error("No data fetched", "tickers", p.Tickers, "empty", extracted.Empty)
		if extracted.Err != nil {
			return result, fmt.Errorf("%w: %w", ErrNoData, extracted.Err)
		}
		return result, ErrNoData
	}

	if extracted.Err != nil || len(extracted.Empty) > 0 {
		logger.Warn("Some tickers were skipped",
			"fetched_tickers", extracted.Dataset.Tickers(),
			"empty", extracted.Empty,
			"error", extracted.Err)
	}

	result.Stored = Save(ctx, p.Open, extracted.Dataset, p.Table, logger)
	logger.Info("ETL run finished", "fetched", result.Fetched, "stored", result.Stored)

	return result, nil
}
