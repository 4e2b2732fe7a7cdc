package core

import (
	"fmt"
	"reflect"
	"sync"
)

// Func is the uniform calling convention: any number of arguments in, one value out. Shims declared with explicit
// parameter descriptors (optional, reference, variadic) use it, and it can replace any original with at most one
// result.
type Func = func(args ...any) any

// Shim is the forwarding definition for one identity. Once materialized it never changes; enabling and disabling a
// mock only changes the registry entry the shim consults.
type Shim struct {
	id        Identity
	canonical string
	signature Signature
	uniform   bool
	original  reflect.Value
	registry  *Registry

	forwarder    reflect.Value
	static       bool
	materialized bool
	builds       int
}

// Active returns the mock currently enabled for the shim's identity, or nil.
func (s *Shim) Active() *Mock {
	return s.registry.Lookup(s.canonical)
}

// Forward is the body of a uniform-convention shim: normalize the arguments, then route them to the enabled mock or
// to the original. It panics with an *ArityError when the arguments do not fit the declared parameters, as a
// mismatched call to a typed function would fail to compile.
func (s *Shim) Forward(args []any) any {
	normalized, err := s.signature.Normalize(s.id.String(), args)
	if err != nil {
		panic(err)
	}

	mock := s.Active()
	if mock == nil {
		//nolint:forcetypeassert // Declare only marks a shim uniform when the original is a Func
		return s.original.Interface().(Func)(normalized...)
	}

	results := mock.Call(normalized)
	if len(results) == 0 {
		return nil
	}

	return results[0]
}

// Forwarder returns the materialized forwarding function, or nil if the shim is static or not yet materialized.
func (s *Shim) Forwarder() any {
	if !s.forwarder.IsValid() {
		return nil
	}

	return s.forwarder.Interface()
}

// Identity returns the shim's function identity.
func (s *Shim) Identity() Identity {
	return s.id
}

// Materializations returns how many times a forwarder was built for this shim. It never exceeds one.
func (s *Shim) Materializations() int {
	return s.builds
}

// Original returns the function the shim falls back to.
func (s *Shim) Original() any {
	return s.original.Interface()
}

// Signature returns the mirrored parameter list.
func (s *Shim) Signature() Signature {
	return s.signature
}

// Static reports whether the forwarder is generated source rather than built at runtime.
func (s *Shim) Static() bool {
	return s.static
}

// Type returns the original function's type.
func (s *Shim) Type() reflect.Type {
	return s.original.Type()
}

// Uniform reports whether the shim uses the Func calling convention.
func (s *Shim) Uniform() bool {
	return s.uniform
}

// accepts reports whether a replacement of type replacement can stand in for the original.
func (s *Shim) accepts(replacement reflect.Type) bool {
	if replacement == funcType {
		return s.original.Type().NumOut() <= 1
	}

	return !s.uniform && replacement.ConvertibleTo(s.original.Type())
}

// build creates the runtime forwarder.
func (s *Shim) build() {
	if s.uniform {
		s.forwarder = reflect.ValueOf(Func(func(args ...any) any {
			return s.Forward(args)
		}))
	} else {
		s.forwarder = reflect.MakeFunc(s.original.Type(), s.call)
	}

	s.builds++
	s.materialized = true
}

// call is the body of a typed runtime shim.
func (s *Shim) call(in []reflect.Value) []reflect.Value {
	mock := s.Active()
	if mock == nil {
		if s.signature.IsVariadic() {
			return s.original.CallSlice(in)
		}

		return s.original.Call(in)
	}

	return resultValues(mock.Call(s.signature.Flatten(in)), s.original.Type())
}

// redeclared checks that a second declaration for the shim's canonical identity is the same declaration.
func (s *Shim) redeclared(id Identity, original reflect.Value) error {
	switch {
	case id != s.id:
		return &ReflectionError{
			Function: id.String(),
			Err:      fmt.Errorf("%w: %s is already declared as %s", ErrInvalidName, id, s.id),
		}
	case original.Pointer() != s.original.Pointer():
		return &ReflectionError{
			Function: id.String(),
			Err:      fmt.Errorf("%w: %s is already declared with a different original", ErrInvalidName, id),
		}
	default:
		return nil
	}
}

// As converts a result or argument to T the way forwarders do: nil becomes T's zero value, convertible values are
// converted, and anything else panics with ErrSignatureMismatch.
func As[T any](v any) T {
	out, _ := valueAs(v, reflect.TypeFor[T]()).Interface().(T)

	return out
}

// ShimTable holds the shims installed in a process, one per canonical identity, each bound to the registry it
// consults.
type ShimTable struct {
	mu       sync.Mutex
	registry *Registry
	shims    map[string]*Shim
}

// NewShimTable creates an empty table whose shims consult registry.
func NewShimTable(registry *Registry) *ShimTable {
	return &ShimTable{
		registry: registry,
		shims:    make(map[string]*Shim),
	}
}

// Shims returns the process-wide shim table, bound to Instance().
func Shims() *ShimTable {
	return shims()
}

// Declare records original as the function behind id. Declaring the same identity with the same original again does
// nothing and returns the existing shim. A second declaration that only matches case-insensitively, or that names a
// different original, fails with a *ReflectionError wrapping ErrInvalidName. With params, original must use the Func convention and params describe the
// parameters it really takes; without params the signature is mirrored from original's type.
func (t *ShimTable) Declare(id Identity, original any, params ...Param) (*Shim, error) {
	err := id.Validate()
	if err != nil {
		return nil, &ReflectionError{Function: id.String(), Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	value := reflect.ValueOf(original)
	if value.Kind() != reflect.Func || value.IsNil() {
		return nil, &ReflectionError{
			Function: id.String(),
			Err:      fmt.Errorf("%w: original is %T", ErrNotAFunction, original),
		}
	}

	canonical := id.Canonical()
	if shim, ok := t.shims[canonical]; ok {
		err := shim.redeclared(id, value)
		if err != nil {
			return nil, err
		}

		return shim, nil
	}

	signature, uniform, err := mirror(value, params)
	if err != nil {
		return nil, &ReflectionError{Function: id.String(), Err: err}
	}

	shim := &Shim{
		id:        id,
		canonical: canonical,
		signature: signature,
		uniform:   uniform,
		original:  value,
		registry:  t.registry,
	}
	t.shims[canonical] = shim

	return shim, nil
}

// Install declares original and marks the shim static: its forwarder is generated source that already exists, so
// Materialize never builds one.
func (t *ShimTable) Install(id Identity, original any) (*Shim, error) {
	shim, err := t.Declare(id, original)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !shim.materialized {
		shim.static = true
		shim.materialized = true
	}

	return shim, nil
}

// Lookup returns the shim declared for id.
func (t *ShimTable) Lookup(id Identity) (*Shim, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	shim, ok := t.shims[id.Canonical()]

	return shim, ok
}

// Materialize ensures id has a forwarder, building it the first time. An identity nobody declared cannot be
// mirrored and fails with a *ReflectionError wrapping ErrUnknownFunction.
func (t *ShimTable) Materialize(id Identity) (*Shim, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	shim, ok := t.shims[id.Canonical()]
	if !ok {
		return nil, &ReflectionError{Function: id.String(), Err: ErrUnknownFunction}
	}

	if !shim.materialized {
		shim.build()
	}

	return shim, nil
}

// Registry returns the registry the table's shims consult.
func (t *ShimTable) Registry() *Registry {
	return t.registry
}

// mirror works out the signature of original, using params when the caller describes them.
func mirror(original reflect.Value, params []Param) (Signature, bool, error) {
	if original.Type() == funcType {
		if len(params) == 0 {
			params = []Param{{Name: "args", IsVariadic: true}}
		}

		signature := Signature{Params: params, Results: 1}

		return signature, true, signature.Validate()
	}

	if len(params) > 0 {
		return Signature{}, false, fmt.Errorf(
			"%w: parameter descriptors need a %s original, got %s",
			ErrInvalidSignature, funcType, original.Type(),
		)
	}

	signature, err := SignatureOf(original.Type())

	return signature, false, err
}

// resultValues converts a mock's results into the values a function of fnType returns. Missing or nil results
// become zero values.
func resultValues(results []any, fnType reflect.Type) []reflect.Value {
	out := make([]reflect.Value, fnType.NumOut())

	for i := range out {
		want := fnType.Out(i)

		if i >= len(results) || results[i] == nil {
			out[i] = reflect.Zero(want)

			continue
		}

		out[i] = valueAs(results[i], want)
	}

	return out
}

// valueAs converts v to a reflect.Value of type want. A nil v becomes want's zero value.
func valueAs(v any, want reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(want)
	}

	value := reflect.ValueOf(v)

	switch {
	case value.Type() == want:
		return value
	case value.Type().AssignableTo(want), value.Type().ConvertibleTo(want):
		return value.Convert(want)
	default:
		panic(fmt.Errorf("%w: cannot use %T as %s", ErrSignatureMismatch, v, want))
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Type constant
	funcType = reflect.TypeFor[Func]()
	//nolint:gochecknoglobals // Process-wide shim table, paired with the process-wide registry
	shims = sync.OnceValue(func() *ShimTable { return NewShimTable(Instance()) })
)
