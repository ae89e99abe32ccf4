package engine

import (
	"fmt"

	_ "github.com/lib/pq"
)

// NewPostgres returns the server engine for PostgreSQL connections.
func NewPostgres(cfg ServerConfig) Engine {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	// Local development databases rarely speak TLS.
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database,
	)
	return &sqlEngine{
		driverName: "postgres",
		dsn:        dsn,
		numbered:   true,
		quoteCh:    `"`,
		healthSQL:  `SELECT 1`,
		listTablesSQL: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() ORDER BY table_name`,
		columnsSQL: `SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
			ORDER BY ordinal_position`,
		pkSQL: `SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_name = $1
			ORDER BY kcu.ordinal_position`,
		open: defaultOpen,
	}
}
