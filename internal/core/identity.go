package core

import (
	"fmt"
	"go/token"
	"strings"
)

// Identity names one interceptable function: the scope (the import path of the package holding the shim) and the
// function's simple name within it.
type Identity struct {
	Scope string
	Name  string
}

// NewIdentity creates an Identity for name in scope.
func NewIdentity(scope, name string) Identity {
	return Identity{Scope: scope, Name: name}
}

// Canonical returns the lowercase "scope::name" key used by the registry.
// Two identities refer to the same function iff their canonical keys are equal.
func (id Identity) Canonical() string {
	return strings.ToLower(id.Scope + scopeSeparator + id.Name)
}

// String returns the identity as it would be written at a call site.
func (id Identity) String() string {
	return id.Scope + "." + id.Name
}

// Validate checks that the scope is set and the name is a simple, unqualified identifier.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.Scope) == "" {
		return fmt.Errorf("%w: empty scope for %q", ErrInvalidName, id.Name)
	}

	if strings.Contains(id.Scope, scopeSeparator) {
		return fmt.Errorf("%w: scope %q contains %q", ErrInvalidName, id.Scope, scopeSeparator)
	}

	if !token.IsIdentifier(id.Name) {
		return fmt.Errorf("%w: %q is not a simple identifier", ErrInvalidName, id.Name)
	}

	return nil
}

const scopeSeparator = "::"
