package provider

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Registry tries providers in priority order and activates the first one
// that reports usable connections in the current workspace. The declarative
// config provider is registered ahead of zero-config conventions, so an
// explicit configuration always wins over inference.
type Registry struct {
	log zerolog.Logger

	mu        sync.Mutex
	providers []*Provider
	active    *Provider
}

// NewRegistry creates a registry; providers are tried in argument order.
func NewRegistry(log zerolog.Logger, providers ...*Provider) *Registry {
	return &Registry{log: log, providers: providers}
}

// Resolve returns the active provider, scanning on first use. It returns
// nil when no strategy can produce a usable connection here.
func (r *Registry) Resolve(ctx context.Context) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return r.active
	}
	for _, p := range r.providers {
		if p.CanBeUsedInCurrentWorkspace(ctx) {
			r.log.Info().Str("provider", p.Name()).Msg("database provider activated")
			r.active = p
			return p
		}
	}
	return nil
}

// Reset boots every provider (clearing caches and selections) and drops the
// active provider, forcing a fresh scan on the next Resolve. Called when the
// workspace configuration changes.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.providers {
		p.Boot()
	}
	r.active = nil
	r.log.Debug().Msg("providers reset")
}
