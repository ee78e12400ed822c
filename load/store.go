package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
)

const DefaultTable = "stock_prices"

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrInvalidTable  = errors.New("invalid table name")
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Store is a handle on the relational store. It is meant to be opened for a
// single operation and closed right after.
type Store struct {
	Logger *slog.Logger
	DB     *sql.DB
	Driver string

	// closer releases driver resources beyond the *sql.DB (duckdb connector).
	closer  io.Closer
	replace func(ctx context.Context, table string, ds transform.Dataset) error
}

// Opener opens a fresh Store.
type Opener func(ctx context.Context) (*Store, error)

// NewOpener returns an Opener bound to the store configuration.
func NewOpener(cfg config.StoreConfig, logger *slog.Logger) Opener {
	return func(ctx context.Context) (*Store, error) {
		return Open(ctx, cfg, logger)
	}
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Store, error) {
	var (
		store *Store
		err   error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", "duckdb":
		store, err = openDuckDB(cfg, logger)
	case "sqlite":
		store, err = openSQLite(cfg, logger)
	case "postgres":
		store, err = openPostgres(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.DB.PingContext(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", store.Driver, err)
	}

	return store, nil
}

func (s *Store) Close() error {
	err := s.DB.Close()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// ValidateTable rejects anything but a plain or schema-qualified identifier,
// since table names are interpolated into SQL.
func ValidateTable(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

// ReplaceTable discards the table's previous contents and writes ds in their
// place. It returns the number of rows written. An empty dataset writes
// nothing and leaves the table untouched.
func (s *Store) ReplaceTable(ctx context.Context, table string, ds transform.Dataset) (int, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	if len(ds) == 0 {
		s.Logger.Warn("Refusing to replace table with an empty dataset", "table", table)
		return 0, nil
	}

	if err := s.replace(ctx, table, ds); err != nil {
		return 0, fmt.Errorf("failed to replace table %s: %w", table, err)
	}
	return len(ds), nil
}

func (s *Store) RunQuery(ctx context.Context, query string) error {
	_, err := s.DB.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

// Query executes a query and returns its rows rendered as text.
func (s *Store) Query(ctx context.Context, query string) (ResultSet, error) {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return ResultSet{}, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return ResultSet{}, fmt.Errorf("failed to get columns: %w", err)
	}

	dbTypes := make([]string, len(columns))
	if columnTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range columnTypes {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	}

	result := ResultSet{Columns: columns, Rows: [][]string{}}
	for rows.Next() {
		// Create a slice of pointers to the column values
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return ResultSet{}, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = formatColumnValue(v, dbTypes[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("error iterating over rows: %w", err)
	}

	return result, nil
}

// sqlDialect describes how a database/sql backend spells the table schema
// and its bind parameters.
type sqlDialect struct {
	createTable string
	placeholder func(n int) string
}

// replaceInTx drops, recreates and fills the table inside one transaction.
func replaceInTx(ctx context.Context, db *sql.DB, d sqlDialect, table string, ds transform.Dataset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(d.createTable, table)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s, %s, %s, %s)",
		table, strings.Join(transform.Columns, ", "),
		d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range ds {
		if _, err := stmt.ExecContext(ctx, o.Date, o.Close, o.Volume, o.Ticker); err != nil {
			return fmt.Errorf("failed to insert row for %s on %s: %w", o.Ticker, o.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
