package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "STOCKFOLIO"

type Config struct {
	Extract  ExtractConfig  `mapstructure:"extract"`
	Store    StoreConfig    `mapstructure:"store"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Env      string
}

type ExtractConfig struct {
	Provider  string        `mapstructure:"provider"`
	Tickers   []string      `mapstructure:"tickers"`
	Window    string        `mapstructure:"window"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Backoff   BackoffConfig `mapstructure:"backoff"`
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max"`
}

// StoreConfig locates the relational store. Path is a file path for duckdb
// and sqlite, and a DSN for postgres.
type StoreConfig struct {
	Driver            string   `mapstructure:"driver"`
	Path              string   `mapstructure:"path"`
	Table             string   `mapstructure:"table"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

type AnalysisConfig struct {
	Files       []string `mapstructure:"files"`
	PreviewRows int      `mapstructure:"preview_rows"`
	Format      string   `mapstructure:"format"`
	SMAWindow   int      `mapstructure:"sma_window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("extract.provider", "yahoo")
	v.SetDefault("extract.tickers", []string{"AAPL", "MSFT", "TSLA"})
	v.SetDefault("extract.window", "2y")
	v.SetDefault("extract.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("extract.user_agent", "Mozilla/5.0")
	v.SetDefault("extract.timeout", 30*time.Second)
	v.SetDefault("extract.backoff.retry_wait_min", time.Second)
	v.SetDefault("extract.backoff.retry_wait_max", 30*time.Second)
	v.SetDefault("extract.backoff.retry_max", 0)

	v.SetDefault("store.driver", "duckdb")
	v.SetDefault("store.path", "data/portfolio.duckdb")
	v.SetDefault("store.table", "stock_prices")

	v.SetDefault("analysis.files", []string{"sql/01_volatility.sql", "sql/02_moving_avg.sql"})
	v.SetDefault("analysis.preview_rows", 5)
	v.SetDefault("analysis.format", "table")
	v.SetDefault("analysis.sma_window", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("schedule.cron", "0 6 * * 1-5")
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
// Either reader may be nil, in which case the defaults apply.
// Environment variables prefixed with STOCKFOLIO_ override both, e.g.
// STOCKFOLIO_STORE_PATH overrides store.path.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if baseConfigReader != nil {
		if err := v.ReadConfig(baseConfigReader); err != nil {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	if envConfigReader != nil {
		if err := v.MergeConfig(envConfigReader); err != nil {
			return nil, fmt.Errorf("error merging %s config: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	config.Env = env

	return &config, nil
}
