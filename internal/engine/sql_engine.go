package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// HandleOpener produces a low-level connection handle for a driver/DSN pair.
// The default is sql.Open; tests substitute a mock.
type HandleOpener func(driverName, dsn string) (*sql.DB, error)

func defaultOpen(driverName, dsn string) (*sql.DB, error) {
	return sql.Open(driverName, dsn)
}

// sqlEngine is the shared implementation behind the SQLite, MySQL, MariaDB
// and Postgres engines. Construction only stores the DSN; Boot opens the
// handle and verifies it with a ping.
type sqlEngine struct {
	driverName string
	dsn        string
	numbered   bool   // $1-style placeholders (postgres)
	quoteCh    string // identifier quote character

	healthSQL     string
	listTablesSQL string
	columnsSQL    string // one placeholder: table name
	pkSQL         string // one placeholder: table name (sqlite uses PRAGMA instead)

	open HandleOpener

	mu sync.Mutex
	db *sql.DB
}

// Boot establishes or refreshes the underlying session. Idempotent: an
// already-open handle is only pinged.
func (e *sqlEngine) Boot(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		db, err := e.open(e.driverName, e.dsn)
		if err != nil {
			return fmt.Errorf("open %s: %w", e.driverName, err)
		}
		// Sensible pool settings for an inspection tool
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(10 * time.Minute)
		e.db = db
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", e.driverName, err)
	}
	return nil
}

// IsOkay runs a minimal round-trip against the live session. It never
// returns an error; any fault reads as false.
func (e *sqlEngine) IsOkay(ctx context.Context) bool {
	e.mu.Lock()
	db := e.db
	e.mu.Unlock()
	if db == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, e.healthSQL)
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err() == nil
}

func (e *sqlEngine) handle() (*sql.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil, fmt.Errorf("%s engine not booted", e.driverName)
	}
	return e.db, nil
}

func (e *sqlEngine) ListTables(ctx context.Context) ([]string, error) {
	db, err := e.handle()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, e.listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (e *sqlEngine) Columns(ctx context.Context, table string) ([]Column, error) {
	db, err := e.handle()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if e.driverName == "sqlite" {
		return e.sqliteColumns(ctx, db, table)
	}

	rows, err := db.QueryContext(ctx, e.columnsSQL, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, dataType, nullable string
		var dflt sql.NullString
		if err := rows.Scan(&name, &dataType, &nullable, &dflt); err != nil {
			continue
		}
		cols = append(cols, Column{
			Name:     name,
			Type:     dataType,
			Nullable: strings.EqualFold(nullable, "YES"),
			Default:  dflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pks := e.primaryKeys(ctx, db, table)
	for i := range cols {
		for _, pk := range pks {
			if cols[i].Name == pk {
				cols[i].IsPrimary = true
			}
		}
	}
	return cols, nil
}

// sqliteColumns reads column metadata via PRAGMA table_info, which cannot
// use placeholders; the table name is embedded with quotes escaped.
func (e *sqlEngine) sqliteColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(table, "'", "''")))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			continue
		}
		cols = append(cols, Column{
			Name:      name,
			Type:      colType,
			Nullable:  notNull == 0,
			Default:   dflt.String,
			IsPrimary: pk > 0,
		})
	}
	return cols, rows.Err()
}

// primaryKeys returns the primary key columns for a table, best-effort.
func (e *sqlEngine) primaryKeys(ctx context.Context, db *sql.DB, table string) []string {
	if e.driverName == "sqlite" {
		cols, err := e.sqliteColumns(ctx, db, table)
		if err != nil {
			return []string{"rowid"}
		}
		var pks []string
		for _, c := range cols {
			if c.IsPrimary {
				pks = append(pks, c.Name)
			}
		}
		if len(pks) == 0 {
			return []string{"rowid"}
		}
		return pks
	}

	rows, err := db.QueryContext(ctx, e.pkSQL, table)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		pks = append(pks, name)
	}
	return pks
}

func (e *sqlEngine) Rows(ctx context.Context, table string, limit, offset int) (*RowPage, error) {
	db, err := e.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", e.quoteIdent(table))
	if err := db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}

	pks := e.primaryKeys(ctx, db, table)

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d", e.quoteIdent(table), limit, offset)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var resultRows [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]any, len(cols))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}

	return &RowPage{
		Columns:     cols,
		Rows:        resultRows,
		Total:       total,
		Offset:      offset,
		HasMore:     int64(offset+len(resultRows)) < total,
		PrimaryKeys: pks,
	}, nil
}

func (e *sqlEngine) Mutate(ctx context.Context, table string, mutations []Mutation) (*MutationResult, error) {
	db, err := e.handle()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &MutationResult{}
	for _, m := range mutations {
		var execErr error
		switch m.Type {
		case "update":
			execErr = e.applyUpdate(ctx, tx, table, m)
		case "delete":
			execErr = e.applyDelete(ctx, tx, table, m)
		default:
			execErr = fmt.Errorf("unknown mutation type: %s", m.Type)
		}
		if execErr != nil {
			result.Errors = append(result.Errors, execErr.Error())
		} else {
			result.Applied++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func (e *sqlEngine) applyUpdate(ctx context.Context, tx *sql.Tx, table string, m Mutation) error {
	if len(m.Changes) == 0 {
		return fmt.Errorf("update with no changes")
	}
	n := 1
	setClauses := make([]string, 0, len(m.Changes))
	args := make([]any, 0, len(m.Changes)+len(m.RowKey))
	for col, val := range m.Changes {
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", e.quoteIdent(col), e.placeholder(n)))
		args = append(args, val)
		n++
	}
	whereClauses := make([]string, 0, len(m.RowKey))
	for col, val := range m.RowKey {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = %s", e.quoteIdent(col), e.placeholder(n)))
		args = append(args, val)
		n++
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		e.quoteIdent(table), strings.Join(setClauses, ", "), strings.Join(whereClauses, " AND "))
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (e *sqlEngine) applyDelete(ctx context.Context, tx *sql.Tx, table string, m Mutation) error {
	n := 1
	whereClauses := make([]string, 0, len(m.RowKey))
	args := make([]any, 0, len(m.RowKey))
	for col, val := range m.RowKey {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = %s", e.quoteIdent(col), e.placeholder(n)))
		args = append(args, val)
		n++
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", e.quoteIdent(table), strings.Join(whereClauses, " AND "))
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (e *sqlEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *sqlEngine) quoteIdent(name string) string {
	return e.quoteCh + strings.ReplaceAll(name, e.quoteCh, e.quoteCh+e.quoteCh) + e.quoteCh
}

func (e *sqlEngine) placeholder(n int) string {
	if e.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// formatValue converts a database value to something JSON-serializable.
func formatValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
