package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/domain"
	"github.com/Quantumben/devdb-vscode/internal/engine"
	"github.com/Quantumben/devdb-vscode/internal/provider"
)

type stubResolver struct {
	descs []domain.ConnectionDescriptor
}

func (s *stubResolver) Name() string { return "stub" }
func (s *stubResolver) Resolve(ctx context.Context) []domain.ConnectionDescriptor {
	return s.descs
}

// newFixtureDB creates a SQLite file with a tasks table of n rows.
// The driver is registered by the engine package import.
func newFixtureDB(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE tasks (id INTEGER PRIMARY KEY, title TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for i := 0; i < n; i++ {
		if _, err := db.Exec(`INSERT INTO tasks (title) VALUES (?)`, "task"); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func newTestInspector(t *testing.T, descs []domain.ConnectionDescriptor) *Inspector {
	t.Helper()
	rep := provider.NewLogReporter(zerolog.Nop())
	p := provider.New(&stubResolver{descs: descs}, rep, zerolog.Nop())
	reg := provider.NewRegistry(zerolog.Nop(), p)
	return NewInspector(reg, zerolog.Nop())
}

func TestInspector_ConnectionsAndTables(t *testing.T) {
	ctx := context.Background()
	path := newFixtureDB(t, 3)
	s := newTestInspector(t, []domain.ConnectionDescriptor{{Type: domain.DriverSQLite, Path: path}})

	conns, err := s.Connections(ctx)
	if err != nil {
		t.Fatalf("connections: %v", err)
	}
	if len(conns) != 1 || conns[0].ID != path {
		t.Fatalf("expected one connection identified by path, got %v", conns)
	}

	tables, err := s.Tables(ctx)
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "tasks" {
		t.Fatalf("expected [tasks], got %v", tables)
	}

	cols, err := s.Describe(ctx, "tasks")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if len(cols) != 2 || !cols[0].IsPrimary {
		t.Fatalf("unexpected columns: %v", cols)
	}

	if !s.Ping(ctx) {
		t.Fatal("expected healthy connection")
	}
}

func TestInspector_SelectConnection(t *testing.T) {
	ctx := context.Background()
	path := newFixtureDB(t, 1)
	s := newTestInspector(t, []domain.ConnectionDescriptor{{Type: domain.DriverSQLite, Path: path}})

	if err := s.SelectConnection(ctx, path); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.SelectConnection(ctx, "no-such-id"); err == nil {
		t.Fatal("expected error for unknown identity")
	}
}

func TestInspector_TableDataPaging(t *testing.T) {
	ctx := context.Background()
	path := newFixtureDB(t, 5)
	s := newTestInspector(t, []domain.ConnectionDescriptor{{Type: domain.DriverSQLite, Path: path}})

	cursorID, page, err := s.TableData(ctx, "tasks", 2)
	if err != nil {
		t.Fatalf("table data: %v", err)
	}
	if cursorID == "" {
		t.Fatal("expected a cursor id while rows remain")
	}
	if len(page.Rows) != 2 || page.Total != 5 {
		t.Fatalf("unexpected first page: %+v", page)
	}

	second, err := s.FetchMore(ctx, cursorID)
	if err != nil {
		t.Fatalf("fetch more: %v", err)
	}
	if len(second.Rows) != 2 || !second.HasMore {
		t.Fatalf("unexpected second page: %+v", second)
	}

	third, err := s.FetchMore(ctx, cursorID)
	if err != nil {
		t.Fatalf("fetch more: %v", err)
	}
	if len(third.Rows) != 1 || third.HasMore {
		t.Fatalf("unexpected final page: %+v", third)
	}

	// Cursor is dropped after the final page.
	if _, err := s.FetchMore(ctx, cursorID); err == nil {
		t.Fatal("expected error for exhausted cursor")
	}
}

func TestInspector_DropCursorsExpiresOpenReads(t *testing.T) {
	ctx := context.Background()
	path := newFixtureDB(t, 5)
	s := newTestInspector(t, []domain.ConnectionDescriptor{{Type: domain.DriverSQLite, Path: path}})

	cursorID, _, err := s.TableData(ctx, "tasks", 2)
	if err != nil {
		t.Fatalf("table data: %v", err)
	}
	if cursorID == "" {
		t.Fatal("expected a cursor id while rows remain")
	}

	// A configuration change closes the cached engines; cursors into them
	// must expire rather than surface a closed-handle driver error.
	s.DropCursors()

	if _, err := s.FetchMore(ctx, cursorID); err == nil {
		t.Fatal("expected dropped cursor to read as expired")
	} else if !strings.Contains(err.Error(), "unknown cursor") {
		t.Fatalf("expected an unknown-cursor error, got %v", err)
	}
}

func TestInspector_TableDataSinglePage(t *testing.T) {
	ctx := context.Background()
	path := newFixtureDB(t, 2)
	s := newTestInspector(t, []domain.ConnectionDescriptor{{Type: domain.DriverSQLite, Path: path}})

	cursorID, page, err := s.TableData(ctx, "tasks", 10)
	if err != nil {
		t.Fatalf("table data: %v", err)
	}
	if cursorID != "" {
		t.Fatal("expected no cursor when everything fits in one page")
	}
	if len(page.Rows) != 2 || page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestInspector_Mutate(t *testing.T) {
	ctx := context.Background()
	path := newFixtureDB(t, 2)
	s := newTestInspector(t, []domain.ConnectionDescriptor{{Type: domain.DriverSQLite, Path: path}})

	result, err := s.Mutate(ctx, "tasks", []engine.Mutation{
		{Type: "delete", RowKey: map[string]any{"id": 1}},
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if result.Applied != 1 {
		t.Fatalf("expected 1 applied, got %d", result.Applied)
	}

	_, page, err := s.TableData(ctx, "tasks", 10)
	if err != nil {
		t.Fatalf("table data: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected 1 row after delete, got %d", page.Total)
	}
}

func TestInspector_NoUsableWorkspace(t *testing.T) {
	ctx := context.Background()
	s := newTestInspector(t, nil)

	if _, err := s.Connections(ctx); err == nil {
		t.Fatal("expected error when no provider is usable")
	}
	if s.Ping(ctx) {
		t.Fatal("expected ping false when no provider is usable")
	}
	if _, err := s.Tables(ctx); err == nil {
		t.Fatal("expected error when no provider is usable")
	}
}
