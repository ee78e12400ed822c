// Package analysis runs SQL against the stored price table and renders the
// results.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/load"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/report"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/template"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
)

// Runner executes queries against a freshly opened store. Failures never
// propagate: they are logged and an empty result is returned.
type Runner struct {
	Open   load.Opener
	Logger *slog.Logger
	Table  string
}

// Report is the result of one SQL file.
type Report struct {
	File   string
	Result load.ResultSet
}

func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		Open:   load.NewOpener(cfg.Store, logger),
		Logger: logger,
		Table:  cfg.Store.Table,
	}
}

// ExecuteQuery runs query and returns its rows. Any store error yields an
// empty result.
func (r *Runner) ExecuteQuery(ctx context.Context, query string) load.ResultSet {
	store, err := r.Open(ctx)
	if err != nil {
		r.Logger.Error("Failed to open store", "error", err)
		return load.ResultSet{}
	}
	defer store.Close()

	results, err := store.Query(ctx, query)
	if err != nil {
		r.Logger.Error("Query failed", "error", err)
		return load.ResultSet{}
	}
	return results
}

// ExecuteFile reads a SQL file, binds {{.Table}} and runs it. A missing or
// unreadable file yields an empty result.
func (r *Runner) ExecuteFile(ctx context.Context, path string) load.ResultSet {
	query, err := template.ExecuteSqlTemplate(path, map[string]any{"Table": r.Table})
	if err != nil {
		r.Logger.Error("Failed to prepare SQL file", "file", path, "error", err)
		return load.ResultSet{}
	}

	r.Logger.Debug("Executing SQL file", "file", path)
	return r.ExecuteQuery(ctx, query)
}

// RunReports executes each file in order.
func (r *Runner) RunReports(ctx context.Context, files []string) []Report {
	reports := make([]Report, 0, len(files))
	for _, file := range files {
		results := r.ExecuteFile(ctx, file)
		r.Logger.Info("Report finished", "file", file, "rows", results.Len())
		reports = append(reports, Report{File: file, Result: results})
	}
	return reports
}

// Summary loads the stored prices and computes per-ticker statistics.
func (r *Runner) Summary(ctx context.Context, smaWindow int) []report.TickerSummary {
	if err := load.ValidateTable(r.Table); err != nil {
		r.Logger.Error("Cannot summarize table", "error", err)
		return nil
	}

	results := r.ExecuteQuery(ctx, fmt.Sprintf(
		"SELECT date, close, volume, ticker FROM %s ORDER BY ticker, date", r.Table))
	if results.Empty() {
		r.Logger.Warn("No stored prices to summarize", "table", r.Table)
		return nil
	}

	ds, err := datasetFromResult(results)
	if err != nil {
		r.Logger.Error("Failed to read stored prices", "error", err)
		return nil
	}

	summaries, err := report.Summarize(ds, smaWindow)
	if err != nil {
		r.Logger.Error("Failed to summarize prices", "error", err)
		return nil
	}
	return summaries
}

func datasetFromResult(rs load.ResultSet) (transform.Dataset, error) {
	dates, closes, volumes, tickers := rs.Column("date"), rs.Column("close"), rs.Column("volume"), rs.Column("ticker")
	if dates == nil || closes == nil || volumes == nil || tickers == nil {
		return nil, fmt.Errorf("expected columns %v, got %v", transform.Columns, rs.Columns)
	}

	ds := make(transform.Dataset, 0, rs.Len())
	for i := range rs.Rows {
		closePrice, err := strconv.ParseFloat(closes[i], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid close %q: %w", i, closes[i], err)
		}
		volume, err := strconv.ParseInt(volumes[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid volume %q: %w", i, volumes[i], err)
		}
		ds = append(ds, transform.Observation{
			Date:   dates[i],
			Close:  closePrice,
			Volume: volume,
			Ticker: tickers[i],
		})
	}
	return ds, nil
}

// SummaryResultSet lays summaries out as rows for Render.
func SummaryResultSet(summaries []report.TickerSummary) load.ResultSet {
	rs := load.ResultSet{
		Columns: []string{"ticker", "rows", "first_date", "last_date", "last_close", "mean_close",
			"min_close", "max_close", "daily_volatility", "annualized_volatility", "sma"},
		Rows: make([][]string, 0, len(summaries)),
	}
	for _, s := range summaries {
		rs.Rows = append(rs.Rows, []string{
			s.Ticker,
			strconv.Itoa(s.Count),
			s.FirstDate,
			s.LastDate,
			formatFloat(s.LastClose),
			formatFloat(s.MeanClose),
			formatFloat(s.MinClose),
			formatFloat(s.MaxClose),
			formatOptional(s.DailyVolatility),
			formatOptional(s.AnnualizedVolatility),
			formatOptional(s.SMA),
		})
	}
	return rs
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return "NULL"
	}
	return formatFloat(*f)
}
