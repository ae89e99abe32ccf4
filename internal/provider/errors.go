package provider

import (
	"fmt"

	"github.com/Quantumben/devdb-vscode/internal/domain"
)

// StructuralConfigError reports a malformed declarative descriptor, such as
// a server entry without a name. It aborts the whole resolution batch: a
// silent partial success would hide a configuration mistake.
type StructuralConfigError struct {
	Driver domain.Driver
	Reason string
}

func (e *StructuralConfigError) Error() string {
	return fmt.Sprintf("invalid %s connection entry: %s", e.Driver, e.Reason)
}

// ConnectionError reports that one engine failed to establish or validate a
// live session. It is scoped to a single entry; resolution continues with
// the remaining candidates.
type ConnectionError struct {
	Identity string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection %q failed validation: %v", e.Identity, e.Err)
	}
	return fmt.Sprintf("connection %q failed validation", e.Identity)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// LookupError reports a selection request for an identity absent from the
// validated-connection cache.
type LookupError struct {
	Identity string
}

func (e *LookupError) Error() string {
	if e.Identity == "" {
		return "no validated database connection available"
	}
	return fmt.Sprintf("no validated connection with id %q", e.Identity)
}
