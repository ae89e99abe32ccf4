package engine

import (
	"context"
	"fmt"

	"github.com/Quantumben/devdb-vscode/internal/domain"
)

// Column describes one column of a table.
type Column struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Nullable  bool   `json:"nullable"`
	Default   string `json:"default,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// RowPage is one page of rows fetched from a table.
type RowPage struct {
	Columns     []string `json:"columns"`
	Rows        [][]any  `json:"rows"`
	Total       int64    `json:"total"`   // total rows in the table
	Offset      int      `json:"offset"`  // offset of the first row in this page
	HasMore     bool     `json:"hasMore"` // more rows past this page
	PrimaryKeys []string `json:"primaryKeys,omitempty"`
}

// Mutation describes a single row-level change (update or delete).
type Mutation struct {
	Type    string         `json:"type"`    // "update" | "delete"
	RowKey  map[string]any `json:"rowKey"`  // PK column → value
	Changes map[string]any `json:"changes"` // column → new value (update only)
}

// MutationResult summarizes the outcome of a batch of mutations.
type MutationResult struct {
	Applied int      `json:"applied"`
	Errors  []string `json:"errors,omitempty"`
}

// Engine is the uniform contract every storage engine implements. Upstream
// table-rendering code only ever talks to this interface and never branches
// on the underlying engine type.
//
// Construction never touches the network or filesystem; Boot and IsOkay are
// the only validation points. Boot is idempotent and safe to call on every
// access. IsOkay performs a cheap round-trip and never returns an error;
// any internal fault reads as false. The table operations are only called
// after IsOkay has reported true at least once.
type Engine interface {
	Boot(ctx context.Context) error
	IsOkay(ctx context.Context) bool

	ListTables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]Column, error)
	Rows(ctx context.Context, table string, limit, offset int) (*RowPage, error)
	Mutate(ctx context.Context, table string, mutations []Mutation) (*MutationResult, error)

	Close() error
}

// ForDescriptor constructs the engine matching the descriptor's type tag.
// The returned engine has not been booted.
func ForDescriptor(d domain.ConnectionDescriptor) (Engine, error) {
	switch d.Type {
	case domain.DriverSQLite:
		return NewSQLite(d.Path), nil
	case domain.DriverMySQL, domain.DriverMariaDB:
		return NewMySQL(serverConfig(d)), nil
	case domain.DriverPostgres:
		return NewPostgres(serverConfig(d)), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", d.Type)
	}
}

func serverConfig(d domain.ConnectionDescriptor) ServerConfig {
	return ServerConfig{
		Host:     d.Host,
		Port:     d.Port.Int(0),
		Username: d.Username,
		Password: d.Password,
		Database: d.Database,
	}
}

// ServerConfig holds the resolved parameters for a client-server engine.
type ServerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}
