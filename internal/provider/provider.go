package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/domain"
	"github.com/Quantumben/devdb-vscode/internal/engine"
	"github.com/Quantumben/devdb-vscode/internal/resolver"
)

// ValidatedConnection is one cache entry: a descriptor that produced a live,
// health-checked engine. The ID is the descriptor identity (file path for
// sqlite, user-assigned name for server kinds) and is unique within a cache.
type ValidatedConnection struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Detail      string `json:"detail,omitempty"`

	Engine engine.Engine `json:"-"`
}

// EngineOption selects a cached connection by identity.
type EngineOption struct {
	ID string `json:"id"`
}

// Provider binds one discovery strategy to a cache of validated connections
// and a selection API. A nil cache means resolution has not run (or was
// reset); an empty cache means it ran and found nothing usable — callers
// must not conflate the two.
//
// Safe for concurrent use: the config watcher resets providers from its own
// goroutine while tool handlers read them, so the cache and selection are
// guarded by a mutex.
type Provider struct {
	name     string
	resolver resolver.Resolver
	reporter Reporter
	log      zerolog.Logger

	// engineFor dispatches a descriptor to its concrete engine constructor.
	// Replaceable in tests.
	engineFor func(domain.ConnectionDescriptor) (engine.Engine, error)

	mu       sync.Mutex
	cache    []ValidatedConnection
	selected engine.Engine // always a reference into cache, or nil
}

// New creates a Provider bound to a resolver strategy.
func New(resolver resolver.Resolver, reporter Reporter, log zerolog.Logger) *Provider {
	return &Provider{
		name:      resolver.Name(),
		resolver:  resolver,
		reporter:  reporter,
		log:       log.With().Str("provider", resolver.Name()).Logger(),
		engineFor: engine.ForDescriptor,
	}
}

// Name returns the bound resolver strategy's name.
func (p *Provider) Name() string { return p.name }

// Boot resets the provider: the cache and the selected engine become unset
// and any live sessions are closed. It has no failure mode.
func (p *Provider) Boot() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// reset closes and drops the cache and selection. Callers hold p.mu.
func (p *Provider) reset() {
	for _, vc := range p.cache {
		_ = vc.Engine.Close()
	}
	p.cache = nil
	p.selected = nil
}

// CanBeUsedInCurrentWorkspace runs the bound resolver and validates every
// descriptor it yields, in order, one at a time. It returns true iff at
// least one descriptor produced a live, health-checked engine.
//
// A server descriptor without a name is a structural error: it aborts the
// whole batch and leaves the cache empty. An engine that fails to boot or
// health-check is reported and skipped; the scan continues.
func (p *Provider) CanBeUsedInCurrentWorkspace(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Release any previous scan's engines before building a fresh cache.
	p.reset()

	descriptors := p.resolver.Resolve(ctx)
	if len(descriptors) == 0 {
		// No convention matched or no artifact present. Not an error, and
		// the cache stays unset.
		return false
	}

	cache := make([]ValidatedConnection, 0, len(descriptors))
	discard := func() {
		for _, vc := range cache {
			_ = vc.Engine.Close()
		}
	}

	for _, d := range descriptors {
		if !d.Type.Known() {
			err := fmt.Errorf("unsupported driver: %s", d.Type)
			p.reporter.Report((&ConnectionError{Identity: d.Identity(), Err: err}).Error())
			continue
		}
		if d.Type.IsServer() && d.Name == "" {
			discard()
			structuralErr := &StructuralConfigError{Driver: d.Type, Reason: "missing required \"name\""}
			p.reporter.Report(structuralErr.Error())
			p.cache = nil
			p.selected = nil
			return false
		}

		eng, err := p.engineFor(d)
		if err != nil {
			p.reporter.Report((&ConnectionError{Identity: d.Identity(), Err: err}).Error())
			continue
		}
		if err := eng.Boot(ctx); err != nil {
			p.reporter.Report((&ConnectionError{Identity: d.Identity(), Err: err}).Error())
			_ = eng.Close()
			continue
		}
		if !eng.IsOkay(ctx) {
			p.reporter.Report((&ConnectionError{Identity: d.Identity()}).Error())
			_ = eng.Close()
			continue
		}

		vc := ValidatedConnection{
			ID:          d.Identity(),
			Description: d.Label(),
			Detail:      detail(d),
			Engine:      eng,
		}
		cache = upsert(cache, vc)
		p.log.Debug().Str("id", vc.ID).Msg("validated connection")
	}

	p.cache = cache
	p.selected = nil
	return len(cache) > 0
}

// upsert appends vc, replacing an earlier entry with the same identity.
// Duplicate identities within one descriptor list resolve last-wins.
func upsert(cache []ValidatedConnection, vc ValidatedConnection) []ValidatedConnection {
	for i := range cache {
		if cache[i].ID == vc.ID {
			_ = cache[i].Engine.Close()
			cache[i] = vc
			return cache
		}
	}
	return append(cache, vc)
}

// GetDatabaseEngine returns the engine for the requested identity, or the
// previously selected one when opt is nil (defaulting to the first cache
// entry). The engine is re-booted before every return so a stale session
// from a previous activation is revived rather than assumed live.
//
// A lookup miss is reported and yields nil; callers treat nil as "cannot
// proceed", never as a retry signal.
func (p *Provider) GetDatabaseEngine(ctx context.Context, opt *EngineOption) engine.Engine {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cache == nil {
		p.reporter.Report((&LookupError{}).Error())
		return nil
	}

	if opt != nil {
		found := false
		for i := range p.cache {
			if p.cache[i].ID == opt.ID {
				p.selected = p.cache[i].Engine
				found = true
				break
			}
		}
		if !found {
			p.reporter.Report((&LookupError{Identity: opt.ID}).Error())
			return nil
		}
	} else if p.selected == nil && len(p.cache) > 0 {
		p.selected = p.cache[0].Engine
	}

	if p.selected == nil {
		p.reporter.Report((&LookupError{}).Error())
		return nil
	}
	if err := p.selected.Boot(ctx); err != nil {
		p.reporter.Report((&ConnectionError{Identity: p.selectedID(), Err: err}).Error())
		return nil
	}
	return p.selected
}

// Connections returns the validated-connection cache for pickers. Nil means
// resolution has not run.
func (p *Provider) Connections() []ValidatedConnection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache
}

func (p *Provider) selectedID() string {
	for i := range p.cache {
		if p.cache[i].Engine == p.selected {
			return p.cache[i].ID
		}
	}
	return ""
}

func detail(d domain.ConnectionDescriptor) string {
	if d.Type == domain.DriverSQLite {
		return d.Path
	}
	return d.Host
}
