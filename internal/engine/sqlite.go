package engine

import (
	"context"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// sqliteEngine is the embedded-file engine. Identity is the filesystem path.
type sqliteEngine struct {
	path string
	sqlEngine
}

// NewSQLite returns the engine for an existing SQLite database file.
// Construction does no I/O; Boot refuses to create a new file.
func NewSQLite(path string) Engine {
	return &sqliteEngine{
		path: path,
		sqlEngine: sqlEngine{
			driverName: "sqlite",
			dsn:        path + "?_pragma=busy_timeout(5000)",
			quoteCh:    `"`,
			// sqlite_master read doubles as a file-format check: a file that
			// is not a valid database errors here, not at open time.
			healthSQL:     `SELECT name FROM sqlite_master LIMIT 1`,
			listTablesSQL: `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
			open:          defaultOpen,
		},
	}
}

func (e *sqliteEngine) Boot(ctx context.Context) error {
	info, err := os.Stat(e.path)
	if err != nil {
		return fmt.Errorf("sqlite file %s: %w", e.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("sqlite path %s is a directory", e.path)
	}
	return e.sqlEngine.Boot(ctx)
}

func (e *sqliteEngine) IsOkay(ctx context.Context) bool {
	if _, err := os.Stat(e.path); err != nil {
		return false
	}
	return e.sqlEngine.IsOkay(ctx)
}
