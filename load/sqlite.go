package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
	_ "modernc.org/sqlite"
)

var sqliteDialect = sqlDialect{
	createTable: "CREATE TABLE %s (date TEXT, close REAL, volume INTEGER, ticker TEXT)",
	placeholder: func(int) string { return "?" },
}

func openSQLite(cfg config.StoreConfig, logger *slog.Logger) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	} else if path != ":memory:" {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection at a time; also keeps :memory: databases on a single connection
	db.SetMaxOpenConns(1)

	logger.Debug("Opened SQLite database", "path", path)

	store := &Store{
		Logger: logger,
		DB:     db,
		Driver: "sqlite",
	}
	store.replace = func(ctx context.Context, table string, ds transform.Dataset) error {
		return replaceInTx(ctx, db, sqliteDialect, table, ds)
	}
	return store, nil
}
