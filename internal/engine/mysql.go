package engine

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// NewMySQL returns the server engine for MySQL and MariaDB connections.
// Both kinds share the wire protocol and the driver.
func NewMySQL(cfg ServerConfig) Engine {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database,
	)
	return &sqlEngine{
		driverName: "mysql",
		dsn:        dsn,
		quoteCh:    "`",
		healthSQL:  `SELECT 1`,
		listTablesSQL: `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`,
		columnsSQL: `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION`,
		pkSQL: `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
			ORDER BY ORDINAL_POSITION`,
		open: defaultOpen,
	}
}
