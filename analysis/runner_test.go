package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/load"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() transform.Dataset {
	return transform.Dataset{
		{Date: "2024-01-02", Close: 100, Volume: 1000, Ticker: "AAPL"},
		{Date: "2024-01-03", Close: 110, Volume: 1100, Ticker: "AAPL"},
		{Date: "2024-01-04", Close: 99, Volume: 900, Ticker: "AAPL"},
		{Date: "2024-01-02", Close: 370, Volume: 2000, Ticker: "MSFT"},
		{Date: "2024-01-03", Close: 374, Volume: 2100, Ticker: "MSFT"},
		{Date: "2024-01-04", Close: 372, Volume: 1900, Ticker: "MSFT"},
		{Date: "2024-01-02", Close: 248, Volume: 3000, Ticker: "TSLA"},
	}
}

// setupRunner seeds a file-backed store with ds and returns a Runner on it.
func setupRunner(t *testing.T, driver string, ds transform.Dataset) (*Runner, *bytes.Buffer) {
	t.Helper()
	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, nil))

	cfg := &config.Config{Store: config.StoreConfig{
		Driver: driver,
		Path:   filepath.Join(t.TempDir(), "portfolio."+driver),
		Table:  load.DefaultTable,
	}}

	if len(ds) > 0 {
		store, err := load.Open(context.Background(), cfg.Store, logger)
		require.NoError(t, err)
		_, err = store.ReplaceTable(context.Background(), cfg.Store.Table, ds)
		require.NoError(t, err)
		require.NoError(t, store.Close())
	}

	return NewRunner(cfg, logger), &logBuffer
}

func writeSQL(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.sql")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunner_ExecuteQuery_AverageCloseByTicker(t *testing.T) {
	for _, driver := range []string{"duckdb", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			runner, _ := setupRunner(t, driver, testDataset())

			results := runner.ExecuteQuery(context.Background(),
				"SELECT ticker, AVG(close) AS avg_close FROM stock_prices GROUP BY ticker ORDER BY ticker")

			assert.Equal(t, []string{"ticker", "avg_close"}, results.Columns)
			assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, results.Column("ticker"))
			assert.Equal(t, []string{"103", "372", "248"}, results.Column("avg_close"))
		})
	}
}

func TestRunner_ExecuteQuery_FailuresAreEmpty(t *testing.T) {
	runner, logs := setupRunner(t, "sqlite", testDataset())

	results := runner.ExecuteQuery(context.Background(), "SELECT * FROM missing_table")
	assert.True(t, results.Empty())
	assert.Empty(t, results.Columns)
	assert.Contains(t, logs.String(), "Query failed")

	runner.Open = func(context.Context) (*load.Store, error) {
		return nil, errors.New("disk on fire")
	}
	results = runner.ExecuteQuery(context.Background(), "SELECT 1")
	assert.Equal(t, load.ResultSet{}, results)
	assert.Contains(t, logs.String(), "disk on fire")
}

func TestRunner_ExecuteFile(t *testing.T) {
	runner, logs := setupRunner(t, "sqlite", testDataset())
	ctx := context.Background()

	t.Run("templated table", func(t *testing.T) {
		path := writeSQL(t, "SELECT COUNT(*) AS n FROM {{.Table}} WHERE ticker = 'AAPL';")
		results := runner.ExecuteFile(ctx, path)
		assert.Equal(t, []string{"3"}, results.Column("n"))
	})

	t.Run("missing file is empty", func(t *testing.T) {
		results := runner.ExecuteFile(ctx, filepath.Join(t.TempDir(), "nope.sql"))
		assert.Equal(t, load.ResultSet{}, results)
		assert.Contains(t, logs.String(), "Failed to prepare SQL file")
	})

	t.Run("unknown template key is empty", func(t *testing.T) {
		path := writeSQL(t, "SELECT * FROM {{.Schema}}.prices;")
		results := runner.ExecuteFile(ctx, path)
		assert.True(t, results.Empty())
	})
}

func TestRunner_RunReports_RepositoryFiles(t *testing.T) {
	for _, driver := range []string{"duckdb", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			runner, _ := setupRunner(t, driver, testDataset())

			reports := runner.RunReports(context.Background(), []string{
				"../sql/01_volatility.sql",
				"../sql/02_moving_avg.sql",
				"../sql/03_avg_close.sql",
				"../sql/missing.sql",
			})
			require.Len(t, reports, 4)

			volatility := reports[0].Result
			assert.Equal(t, "../sql/01_volatility.sql", reports[0].File)
			assert.Equal(t, []string{"ticker", "trading_days", "daily_volatility", "annualized_volatility"}, volatility.Columns)
			// TSLA has a single row and therefore no returns.
			assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, volatility.Column("ticker"))
			assert.Equal(t, []string{"2", "2"}, volatility.Column("trading_days"))

			// The SQL report agrees with the Go-side summary.
			summaries := runner.Summary(context.Background(), 20)
			require.Len(t, summaries, 3)
			want := map[string]float64{}
			for _, s := range summaries {
				if s.DailyVolatility != nil {
					want[s.Ticker] = *s.DailyVolatility
				}
			}
			for i, row := range volatility.Rows {
				daily, err := strconv.ParseFloat(volatility.Column("daily_volatility")[i], 64)
				require.NoError(t, err)
				annual, err := strconv.ParseFloat(volatility.Column("annualized_volatility")[i], 64)
				require.NoError(t, err)
				assert.InDelta(t, want[row[0]], daily, 1e-9, row[0])
				assert.InDelta(t, daily*math.Sqrt(252), annual, 1e-9, row[0])
			}

			movingAvg := reports[1].Result
			assert.Equal(t, []string{"date", "ticker", "close", "ma_20", "ma_50"}, movingAvg.Columns)
			assert.Equal(t, len(testDataset()), movingAvg.Len())
			assert.Equal(t, []string{"2024-01-04", "AAPL", "99", "103", "103"}, movingAvg.Rows[0])

			assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, reports[2].Result.Column("ticker"))
			assert.True(t, reports[3].Result.Empty())
		})
	}
}

func TestRunner_Summary(t *testing.T) {
	runner, _ := setupRunner(t, "sqlite", testDataset())

	summaries := runner.Summary(context.Background(), 2)
	require.Len(t, summaries, 3)
	assert.Equal(t, "AAPL", summaries[0].Ticker)
	assert.Equal(t, 3, summaries[0].Count)
	assert.Equal(t, "2024-01-02", summaries[0].FirstDate)
	assert.Equal(t, "2024-01-04", summaries[0].LastDate)
	assert.InDelta(t, 103, summaries[0].MeanClose, 1e-9)
	require.NotNil(t, summaries[0].SMA)
	assert.InDelta(t, 104.5, *summaries[0].SMA, 1e-9)
	assert.Nil(t, summaries[2].DailyVolatility)

	rs := SummaryResultSet(summaries)
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, "AAPL", rs.Rows[0][0])
	assert.Equal(t, "NULL", rs.Column("daily_volatility")[2])
}

func TestRunner_Summary_EmptyStore(t *testing.T) {
	runner, logs := setupRunner(t, "sqlite", nil)

	assert.Nil(t, runner.Summary(context.Background(), 20))
	assert.Contains(t, logs.String(), "No stored prices to summarize")

	runner.Table = "bad table"
	assert.Nil(t, runner.Summary(context.Background(), 20))
	assert.Contains(t, logs.String(), "invalid table name")
}
