package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/engine"
	"github.com/Quantumben/devdb-vscode/internal/provider"
)

// cursorIdleLimit is how long a row cursor may sit unused before the
// janitor drops it.
const cursorIdleLimit = 10 * time.Minute

// Inspector is the business logic between the editor-facing tool layer and
// the provider registry: connection listing and selection, table browsing,
// and paged row cursors that survive across tool calls.
type Inspector struct {
	registry *provider.Registry
	log      zerolog.Logger

	mu      sync.Mutex
	cursors map[string]*rowCursor
	janitor *cron.Cron
}

// rowCursor remembers where paging left off for one table read.
type rowCursor struct {
	engine     engine.Engine
	table      string
	offset     int
	pageSize   int
	lastAccess time.Time
}

// NewInspector creates an Inspector over the given registry.
func NewInspector(registry *provider.Registry, log zerolog.Logger) *Inspector {
	s := &Inspector{
		registry: registry,
		log:      log,
		cursors:  make(map[string]*rowCursor),
		janitor:  cron.New(),
	}
	if _, err := s.janitor.AddFunc("@every 1m", s.sweepIdleCursors); err != nil {
		log.Warn().Err(err).Msg("cursor janitor not scheduled")
	}
	return s
}

// Start begins the idle-cursor sweep schedule.
func (s *Inspector) Start() { s.janitor.Start() }

// Stop halts the sweep schedule and drops all cursors.
func (s *Inspector) Stop() {
	s.janitor.Stop()
	s.DropCursors()
}

// DropCursors discards every open row cursor. Called when the workspace
// configuration changes: a reset closes the cached engines, so any cursor
// still pointing at them must expire rather than surface a driver error.
func (s *Inspector) DropCursors() {
	s.mu.Lock()
	s.cursors = make(map[string]*rowCursor)
	s.mu.Unlock()
}

// Connections lists the validated connections of the active provider.
func (s *Inspector) Connections(ctx context.Context) ([]provider.ValidatedConnection, error) {
	p := s.registry.Resolve(ctx)
	if p == nil {
		return nil, fmt.Errorf("no usable database connection in this workspace")
	}
	return p.Connections(), nil
}

// SelectConnection makes the connection with the given identity the target
// of subsequent table operations.
func (s *Inspector) SelectConnection(ctx context.Context, id string) error {
	p := s.registry.Resolve(ctx)
	if p == nil {
		return fmt.Errorf("no usable database connection in this workspace")
	}
	if eng := p.GetDatabaseEngine(ctx, &provider.EngineOption{ID: id}); eng == nil {
		return fmt.Errorf("connection %q not found", id)
	}
	return nil
}

// activeEngine returns the selected (re-booted) engine of the active provider.
func (s *Inspector) activeEngine(ctx context.Context) (engine.Engine, error) {
	p := s.registry.Resolve(ctx)
	if p == nil {
		return nil, fmt.Errorf("no usable database connection in this workspace")
	}
	eng := p.GetDatabaseEngine(ctx, nil)
	if eng == nil {
		return nil, fmt.Errorf("no database connection selected")
	}
	return eng, nil
}

// Ping reports whether the selected connection answers a health check.
func (s *Inspector) Ping(ctx context.Context) bool {
	eng, err := s.activeEngine(ctx)
	if err != nil {
		return false
	}
	return eng.IsOkay(ctx)
}

// Tables lists the tables of the selected connection.
func (s *Inspector) Tables(ctx context.Context) ([]string, error) {
	eng, err := s.activeEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.ListTables(ctx)
}

// Describe returns column metadata for a table.
func (s *Inspector) Describe(ctx context.Context, table string) ([]engine.Column, error) {
	eng, err := s.activeEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Columns(ctx, table)
}

// TableData fetches the first page of rows from a table. When more rows
// remain it returns a cursor id for FetchMore.
func (s *Inspector) TableData(ctx context.Context, table string, pageSize int) (string, *engine.RowPage, error) {
	eng, err := s.activeEngine(ctx)
	if err != nil {
		return "", nil, err
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	page, err := eng.Rows(ctx, table, pageSize, 0)
	if err != nil {
		return "", nil, err
	}
	if !page.HasMore {
		return "", page, nil
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.cursors[id] = &rowCursor{
		engine:     eng,
		table:      table,
		offset:     pageSize,
		pageSize:   pageSize,
		lastAccess: time.Now(),
	}
	s.mu.Unlock()
	return id, page, nil
}

// FetchMore continues a paged table read. The cursor is dropped once the
// last page has been served.
func (s *Inspector) FetchMore(ctx context.Context, cursorID string) (*engine.RowPage, error) {
	s.mu.Lock()
	cur, ok := s.cursors[cursorID]
	if ok {
		cur.lastAccess = time.Now()
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown cursor %q: the result set may have expired", cursorID)
	}

	page, err := cur.engine.Rows(ctx, cur.table, cur.pageSize, cur.offset)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	cur.offset += len(page.Rows)
	if !page.HasMore {
		delete(s.cursors, cursorID)
	}
	s.mu.Unlock()
	return page, nil
}

// Mutate applies a batch of row-level updates/deletes to a table.
func (s *Inspector) Mutate(ctx context.Context, table string, mutations []engine.Mutation) (*engine.MutationResult, error) {
	eng, err := s.activeEngine(ctx)
	if err != nil {
		return nil, err
	}
	return eng.Mutate(ctx, table, mutations)
}

func (s *Inspector) sweepIdleCursors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cur := range s.cursors {
		if time.Since(cur.lastAccess) > cursorIdleLimit {
			delete(s.cursors, id)
			s.log.Debug().Str("cursor", id).Msg("dropped idle cursor")
		}
	}
}
