package config

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(env string) *Config {
	return &Config{
		Env: env,
		Extract: ExtractConfig{
			Provider:  "yahoo",
			Tickers:   []string{"AAPL", "MSFT", "TSLA"},
			Window:    "2y",
			BaseURL:   "https://query1.finance.yahoo.com",
			UserAgent: "Mozilla/5.0",
			Timeout:   30 * time.Second,
			Backoff: BackoffConfig{
				RetryWaitMin: time.Second,
				RetryWaitMax: 30 * time.Second,
				RetryMax:     0,
			},
		},
		Store: StoreConfig{
			Driver: "duckdb",
			Path:   "data/portfolio.duckdb",
			Table:  "stock_prices",
		},
		Analysis: AnalysisConfig{
			Files:       []string{"sql/01_volatility.sql", "sql/02_moving_avg.sql"},
			PreviewRows: 5,
			Format:      "table",
			SMAWindow:   20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Schedule: ScheduleConfig{
			Cron: "0 6 * * 1-5",
		},
	}
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		baseYAML string  // Base YAML config
		envYAML  string  // Environment-specific YAML (optional)
		env      string  // Environment variable value
		want     func() *Config
		wantErr  bool
	}{
		{
			name: "defaults without any file",
			env:  "",
			want: func() *Config { return defaultConfig("dev") },
		},
		{
			name: "base file overrides selected keys",
			baseYAML: `
extract:
  tickers: [NVDA, AMD]
  window: 6mo
  backoff:
    retry_max: 2
store:
  driver: sqlite
  path: "data/portfolio.db"
`,
			env: "bar",
			want: func() *Config {
				c := defaultConfig("bar")
				c.Extract.Tickers = []string{"NVDA", "AMD"}
				c.Extract.Window = "6mo"
				c.Extract.Backoff.RetryMax = 2
				c.Store.Driver = "sqlite"
				c.Store.Path = "data/portfolio.db"
				return c
			},
		},
		{
			name: "environment file overrides base",
			baseYAML: `
store:
  conn_init_fn_queries:
    - "sql/db__stage.sql"
analysis:
  files: [sql/a.sql]
`,
			envYAML: `
store:
  conn_init_fn_queries:
    - "sql/db__dev.sql"
analysis:
  files: [sql/b.sql, sql/c.sql]
log:
  format: text
`,
			env: "foo",
			want: func() *Config {
				c := defaultConfig("foo")
				c.Store.ConnInitFnQueries = []string{"sql/db__dev.sql"}
				c.Analysis.Files = []string{"sql/b.sql", "sql/c.sql"}
				c.Log.Format = "text"
				return c
			},
		},
		{
			name:     "invalid base yaml",
			baseYAML: "extract: [unclosed",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var baseConfigReader io.Reader
			if tt.baseYAML != "" {
				baseConfigReader = strings.NewReader(tt.baseYAML)
			}
			var envConfigReader io.Reader
			if tt.envYAML != "" {
				envConfigReader = strings.NewReader(tt.envYAML)
			}

			got, err := NewConfig(baseConfigReader, envConfigReader, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want(), got, "Config structs don't match")
		})
	}
}

func TestNewConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("STOCKFOLIO_STORE_PATH", "/tmp/other.duckdb")
	t.Setenv("STOCKFOLIO_EXTRACT_WINDOW", "1y")

	got, err := NewConfig(strings.NewReader("store:\n  path: data/x.duckdb\n"), nil, "prod")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.duckdb", got.Store.Path)
	assert.Equal(t, "1y", got.Extract.Window)
	assert.Equal(t, "prod", got.Env)
}

func TestNewConfig_RepositoryBaseFile(t *testing.T) {
	baseConfig, err := os.Open("../config.base.yaml")
	require.NoError(t, err)
	defer baseConfig.Close()

	got, err := NewConfig(baseConfig, nil, "test")
	require.NoError(t, err)

	assert.Equal(t, "yahoo", got.Extract.Provider)
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, got.Extract.Tickers)
	assert.Equal(t, 30*time.Second, got.Extract.Timeout)
	assert.Equal(t, 0, got.Extract.Backoff.RetryMax)
	assert.Equal(t, "duckdb", got.Store.Driver)
	assert.Equal(t, "stock_prices", got.Store.Table)
	assert.Empty(t, got.Store.ConnInitFnQueries)
	assert.Equal(t, []string{"sql/01_volatility.sql", "sql/02_moving_avg.sql"}, got.Analysis.Files)
	assert.Equal(t, "0 6 * * 1-5", got.Schedule.Cron)
}
