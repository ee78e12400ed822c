package load

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
	"github.com/marcboeker/go-duckdb"
)

const tmpCSVFile = "stockfolio-*.csv"

func openDuckDB(config config.StoreConfig, logger *slog.Logger) (*Store, error) {
	var path string
	var dbType string
	if strings.HasPrefix(config.Path, "md:") {
		motherduckToken := os.Getenv("MOTHERDUCK_TOKEN")
		if motherduckToken == "" {
			return nil, fmt.Errorf("MOTHERDUCK_TOKEN env variable is not set")
		}
		path = fmt.Sprintf("%s?motherduck_token=%s", config.Path, motherduckToken)
		dbType = ":md:"
	} else if config.Path == "" || config.Path == ":memory:" {
		path = ""
		dbType = ":memory:"
	} else {
		if err := ensureParentDir(config.Path); err != nil {
			return nil, err
		}
		path = config.Path
		dbType = path
	}

	var connInitFn func(driver.ExecerContext) error
	if len(config.ConnInitFnQueries) > 0 {
		connInitFn = func(exec driver.ExecerContext) error {
			for _, path := range config.ConnInitFnQueries {
				query, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read file %s: %w", path, err)
				}

				if _, err := exec.ExecContext(context.Background(), string(query), nil); err != nil {
					return fmt.Errorf("failed to execute query from file %s: %w", path, err)
				}
			}
			return nil
		}
		logger.Debug("Connection initialization queries", "files", config.ConnInitFnQueries)
	}

	connector, err := duckdb.NewConnector(path, connInitFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)

	switch dbType {
	case ":memory:":
		logger.Debug("Connected to DuckDB in-memory database")
	case ":md:":
		logger.Debug("Connected to MotherDuck database")
	default:
		logger.Debug("Connected to local DuckDB database", "path", dbType)
	}

	store := &Store{
		Logger: logger,
		DB:     db,
		Driver: "duckdb",
		closer: connector,
	}
	store.replace = func(ctx context.Context, table string, ds transform.Dataset) error {
		return replaceDuckDB(ctx, store, table, ds)
	}
	return store, nil
}

// replaceDuckDB stages the dataset as a CSV file and swaps the table in a
// single CREATE OR REPLACE statement.
func replaceDuckDB(ctx context.Context, s *Store, table string, ds transform.Dataset) error {
	tmpFile, err := createTmpFile(ds)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT date, close, volume, ticker FROM read_csv('%s', header = true, delim = ',', quote = '\"', columns = {'date': 'VARCHAR', 'close': 'DOUBLE', 'volume': 'BIGINT', 'ticker': 'VARCHAR'});",
		table, strings.ReplaceAll(tmpFile, "'", "''"),
	)

	s.Logger.Debug("Executing DuckDB query", "query", query)

	if _, err := s.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to execute CREATE OR REPLACE statement: %w", err)
	}
	return nil
}

// createTmpFile writes the dataset to a temporary CSV file and returns its path
func createTmpFile(ds transform.Dataset) (string, error) {
	tmpFile, err := os.CreateTemp("", tmpCSVFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := transform.WriteCSV(tmpFile, ds); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to write to temporary file: %w", err)
	}

	// Close the file to flush the data
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmpFile.Name(), nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
