package core

import (
	"fmt"
	"reflect"
)

// Mock binds a function identity to a replacement and a recorder. It is inert until enabled; while enabled, every
// call through the identity's shim is recorded and answered by the replacement.
type Mock struct {
	id          Identity
	replacement reflect.Value
	recorder    *Recorder
	registry    *Registry
	shims       *ShimTable
}

// NewMock creates a disabled mock for name in scope. replacement must be a func: either the original's own func
// type, or Func when the original returns at most one value.
func NewMock(scope, name string, replacement any, opts ...Option) *Mock {
	mock := &Mock{
		id:          NewIdentity(scope, name),
		replacement: reflect.ValueOf(replacement),
		recorder:    NewRecorder(),
		shims:       Shims(),
	}

	for _, opt := range opts {
		opt(mock)
	}

	mock.registry = mock.shims.Registry()

	return mock
}

// Call records args and invokes the replacement with them, returning its results. Only shims call this. A panic in
// the replacement propagates to the original caller; the call is recorded either way.
func (m *Mock) Call(args []any) []any {
	m.recorder.Record(args)

	fnType := m.replacement.Type()

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = valueAs(arg, paramType(fnType, i, arg))
	}

	out := m.replacement.Call(in)

	results := make([]any, len(out))
	for i, value := range out {
		results[i] = value.Interface()
	}

	return results
}

// CanonicalFunctionName returns the lowercase "scope::name" registry key.
func (m *Mock) CanonicalFunctionName() string {
	return m.id.Canonical()
}

// Disable stops routing calls to this mock. The shim stays installed and falls back to the original. Disabling a
// mock that is not enabled does nothing.
func (m *Mock) Disable() {
	m.registry.Unregister(m)
}

// Enable makes this mock answer calls through its identity's shim, materializing the shim the first time.
// It fails with a *MockEnabledError if any mock is already enabled for the identity, and with a *ReflectionError
// if the function cannot be mirrored or the replacement does not fit it. On failure the mock stays disabled.
func (m *Mock) Enable() error {
	err := m.id.Validate()
	if err != nil {
		return &ReflectionError{Function: m.id.String(), Err: err}
	}

	if m.replacement.Kind() != reflect.Func || m.replacement.IsNil() {
		return &ReflectionError{
			Function: m.id.String(),
			Err:      fmt.Errorf("%w: replacement is %s", ErrNotAFunction, m.replacementTypeName()),
		}
	}

	if m.registry.IsRegistered(m) {
		return &MockEnabledError{Function: m.id.String()}
	}

	shim, err := m.shims.Materialize(m.id)
	if err != nil {
		return err
	}

	if !shim.accepts(m.replacement.Type()) {
		return &ReflectionError{
			Function: m.id.String(),
			Err: fmt.Errorf(
				"%w: replacement is %s, original is %s",
				ErrSignatureMismatch, m.replacement.Type(), shim.Type(),
			),
		}
	}

	err = m.registry.Register(m)
	if err != nil {
		return fmt.Errorf("enabling %s: %w", m.id, err)
	}

	return nil
}

// Enabled reports whether this mock is the one currently registered for its identity.
func (m *Mock) Enabled() bool {
	return m.registry.Lookup(m.CanonicalFunctionName()) == m
}

// Identity returns the function identity the mock intercepts.
func (m *Mock) Identity() Identity {
	return m.id
}

// Recorder returns the recorder holding every call this mock answered.
func (m *Mock) Recorder() *Recorder {
	return m.recorder
}

func (m *Mock) replacementTypeName() string {
	if !m.replacement.IsValid() {
		return "nil"
	}

	return m.replacement.Type().String()
}

// Option configures a Mock.
type Option func(*Mock)

// WithShims makes the mock use table, and the registry behind it, instead of the process-wide pair.
func WithShims(table *ShimTable) Option {
	return func(m *Mock) {
		m.shims = table
	}
}

// paramType returns the type argument i binds to in fnType. Past the declared parameters of a non-variadic func it
// falls back to the argument's own type and lets reflect report the mismatch.
func paramType(fnType reflect.Type, index int, arg any) reflect.Type {
	last := fnType.NumIn() - 1

	switch {
	case fnType.IsVariadic() && index >= last:
		return fnType.In(last).Elem()
	case index <= last:
		return fnType.In(index)
	case arg == nil:
		return anyType
	default:
		return reflect.TypeOf(arg)
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Type constant
	anyType = reflect.TypeFor[any]()
)
