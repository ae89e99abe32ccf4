package resolver

import (
	"context"

	"github.com/Quantumben/devdb-vscode/internal/domain"
)

// Resolver discovers candidate connection descriptors for a workspace.
// Absence is not a failure: a resolver that finds nothing returns nil and
// stays silent, so a registry can try the next strategy.
type Resolver interface {
	// Name identifies the strategy in logs and error messages.
	Name() string

	// Resolve returns zero or more unvalidated descriptors. It never
	// performs connection attempts; validation belongs to the provider.
	Resolve(ctx context.Context) []domain.ConnectionDescriptor
}
