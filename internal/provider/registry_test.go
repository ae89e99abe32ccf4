package provider

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/domain"
	"github.com/Quantumben/devdb-vscode/internal/engine"
)

func TestRegistry_PriorityOrder(t *testing.T) {
	ctx := context.Background()
	first, _ := testProvider(
		[]domain.ConnectionDescriptor{mysqlDesc("first")},
		map[string]*fakeEngine{"first": {okay: true}},
	)
	second, _ := testProvider(
		[]domain.ConnectionDescriptor{mysqlDesc("second")},
		map[string]*fakeEngine{"second": {okay: true}},
	)

	r := NewRegistry(zerolog.Nop(), first, second)
	if got := r.Resolve(ctx); got != first {
		t.Fatal("expected the first usable provider to win")
	}
	// Active provider is cached.
	if got := r.Resolve(ctx); got != first {
		t.Fatal("expected the active provider to be reused")
	}
	if second.Connections() != nil {
		t.Fatal("expected the lower-priority provider to stay untouched")
	}
}

func TestRegistry_FallsThroughUnusableProviders(t *testing.T) {
	ctx := context.Background()
	unusable, _ := testProvider(nil, nil)
	usable, _ := testProvider(
		[]domain.ConnectionDescriptor{mysqlDesc("x")},
		map[string]*fakeEngine{"x": {okay: true}},
	)

	r := NewRegistry(zerolog.Nop(), unusable, usable)
	if got := r.Resolve(ctx); got != usable {
		t.Fatal("expected the second provider to be activated")
	}
}

func TestRegistry_NoUsableProvider(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), func() *Provider {
		p, _ := testProvider(nil, nil)
		return p
	}())
	if got := r.Resolve(context.Background()); got != nil {
		t.Fatal("expected nil when no provider is usable")
	}
}

// Caches never mix: each provider owns entries produced by its own resolver.
func TestRegistry_ProviderCachesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, _ := testProvider(
		[]domain.ConnectionDescriptor{mysqlDesc("from-a")},
		map[string]*fakeEngine{"from-a": {okay: true}},
	)
	b, _ := testProvider(
		[]domain.ConnectionDescriptor{mysqlDesc("from-b")},
		map[string]*fakeEngine{"from-b": {okay: true}},
	)

	a.CanBeUsedInCurrentWorkspace(ctx)
	b.CanBeUsedInCurrentWorkspace(ctx)

	for _, vc := range a.Connections() {
		if vc.ID == "from-b" {
			t.Fatal("provider a cached an entry from b's resolver")
		}
	}
	for _, vc := range b.Connections() {
		if vc.ID == "from-a" {
			t.Fatal("provider b cached an entry from a's resolver")
		}
	}
}

func TestRegistry_Reset(t *testing.T) {
	ctx := context.Background()
	eng := &fakeEngine{okay: true}
	p, _ := testProvider(
		[]domain.ConnectionDescriptor{mysqlDesc("x")},
		map[string]*fakeEngine{"x": eng},
	)

	r := NewRegistry(zerolog.Nop(), p)
	if r.Resolve(ctx) == nil {
		t.Fatal("expected a usable provider")
	}

	r.Reset()
	if p.Connections() != nil {
		t.Fatal("expected provider cache cleared on reset")
	}
	if !eng.closed {
		t.Fatal("expected engines closed on reset")
	}
	// A fresh scan re-validates.
	if got := r.Resolve(ctx); got != p {
		t.Fatal("expected provider usable again after reset")
	}
	var found bool
	for _, vc := range p.Connections() {
		if vc.Engine == engine.Engine(eng) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the connection re-validated after reset")
	}
}
