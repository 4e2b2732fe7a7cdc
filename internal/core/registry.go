package core

import (
	"fmt"
	"sync"
)

// Registry maps canonical function identities to the one mock currently enabled for each.
// A missing entry means calls fall through to the original function.
type Registry struct {
	mu    sync.RWMutex
	mocks map[string]*Mock
}

// NewRegistry creates an empty, independent registry. Tests of the registry itself use this instead of Instance so
// that state never leaks between them.
func NewRegistry() *Registry {
	return &Registry{mocks: make(map[string]*Mock)}
}

// Instance returns the process-wide registry, creating it on first use. It is never torn down.
func Instance() *Registry {
	return instance()
}

// IsRegistered reports whether any mock is registered for m's identity, whether or not it is m.
func (r *Registry) IsRegistered(m *Mock) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.mocks[m.CanonicalFunctionName()]

	return ok
}

// Len returns the number of identities with an enabled mock.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.mocks)
}

// Lookup returns the mock enabled for the canonical identity, or nil.
func (r *Registry) Lookup(canonical string) *Mock {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.mocks[canonical]
}

// Register enables m for its identity. It fails with ErrAlreadyRegistered if any mock, m included, is already
// registered for that identity.
func (r *Registry) Register(m *Mock) error {
	canonical := m.CanonicalFunctionName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.mocks[canonical]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, canonical)
	}

	r.mocks[canonical] = m

	return nil
}

// Unregister removes m's identity, but only if the mock stored there is m itself.
func (r *Registry) Unregister(m *Mock) {
	canonical := m.CanonicalFunctionName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mocks[canonical] == m {
		delete(r.mocks, canonical)
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Process-wide registry is the point: shims consult it from any package
	instance = sync.OnceValue(NewRegistry)
)
