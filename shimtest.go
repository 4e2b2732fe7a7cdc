// Package shimtest lets a test substitute a package-level function for as long as the test needs, while every other
// caller keeps getting the original.
//
// Go binds calls to package-level functions at compile time, so the function is reached through a shim: a forwarding
// function in the caller's package with the same signature as the original. Build one at runtime with Define or
// DefineFunc, or generate one with shimgen. Every shim consults one process-wide registry, so enabling a Mock for
// the shim's identity routes calls to the mock's replacement and records them, and disabling it falls back to the
// original.
//
//	var now = shimtest.Define("example.com/app/clock", "now", time.Now)
//
//	func TestStamp(t *testing.T) {
//	    mock := shimtest.Enable(t, shimtest.New("example.com/app/clock", "now", func() time.Time { return fixed }))
//	    ...
//	    g.Expect(mock.Recorder().Calls()).To(HaveLen(1))
//	}
//
// This is the public API entry point. Implementation lives in internal/core.
package shimtest

import (
	"github.com/toejough/shimtest/internal/core"
)

// ArityError reports a call whose arguments do not fit a uniform shim's declared parameters.
type ArityError = core.ArityError

// Call is one recorded invocation.
type Call = core.Call

// Func is the uniform calling convention: any number of arguments in, one value out.
type Func = core.Func

// Identity names one interceptable function.
type Identity = core.Identity

// Matcher is satisfied by gomega matchers and by the matchers in the match package.
type Matcher = core.Matcher

// Mock binds a function identity to a replacement and a recorder.
type Mock = core.Mock

// MockEnabledError is returned when a function already has an enabled mock.
type MockEnabledError = core.MockEnabledError

// Option configures a Mock.
type Option = core.Option

// Param describes one declared parameter of a uniform shim.
type Param = core.Param

// Recorder is the append-only log of a mock's calls.
type Recorder = core.Recorder

// ReflectionError reports a function whose signature could not be mirrored.
type ReflectionError = core.ReflectionError

// Registry maps function identities to their enabled mock.
type Registry = core.Registry

// Shim is the forwarding definition for one identity.
type Shim = core.Shim

// ShimTable holds installed shims.
type ShimTable = core.ShimTable

// Signature is the mirrored call shape of an original function.
type Signature = core.Signature

// TestReporter is the minimal interface shimtest needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
	Cleanup(cleanupFunc func())
}

// Exported variables.
var (
	ErrAlreadyRegistered = core.ErrAlreadyRegistered
	ErrArity             = core.ErrArity
	ErrInvalidName       = core.ErrInvalidName
	ErrInvalidSignature  = core.ErrInvalidSignature
	ErrNotAFunction      = core.ErrNotAFunction
	ErrSignatureMismatch = core.ErrSignatureMismatch
	ErrUnknownFunction   = core.ErrUnknownFunction

	// Omitted marks an optional argument the caller chose not to supply.
	//
	//nolint:gochecknoglobals // Re-exported sentinel value
	Omitted = core.Omitted
)

// Arg returns argument index of call as T. Out-of-range and nil arguments give T's zero value.
func Arg[T any](call Call, index int) T {
	if index < 0 || index >= len(call.Args) {
		var zero T

		return zero
	}

	return core.As[T](call.Args[index])
}

// Define installs a runtime shim for original as scope.name in the process-wide table and returns it, typed like
// original. Assign the result to a package-level variable and call that instead of original:
//
//	var getenv = shimtest.Define("example.com/app/config", "getenv", os.Getenv)
//
// Define panics if name is not a simple identifier or original is not a func, like regexp.MustCompile does for a
// bad pattern: both are mistakes in the program text.
func Define[F any](scope, name string, original F) F {
	return DefineIn(core.Shims(), scope, name, original)
}

// DefineFunc installs a uniform shim for original, whose real parameters params describe: Required, Optional,
// Reference, and Variadic. Callers may leave optional trailing arguments out, or pass Omitted for them; either way
// the original, or the enabled mock, receives only the arguments actually supplied. Like Define, it panics on
// program-text mistakes.
func DefineFunc(scope, name string, original Func, params ...Param) Func {
	return DefineFuncIn(core.Shims(), scope, name, original, params...)
}

// DefineFuncIn is DefineFunc for an explicit table.
func DefineFuncIn(table *ShimTable, scope, name string, original Func, params ...Param) Func {
	id := core.NewIdentity(scope, name)

	_, err := table.Declare(id, original, params...)
	if err != nil {
		panic(err)
	}

	return mustForwarder[Func](table, id)
}

// DefineIn is Define for an explicit table.
func DefineIn[F any](table *ShimTable, scope, name string, original F) F {
	id := core.NewIdentity(scope, name)

	_, err := table.Declare(id, original)
	if err != nil {
		panic(err)
	}

	return mustForwarder[F](table, id)
}

// Enable enables mock for the rest of the test, failing the test if it cannot, and disables it at cleanup.
func Enable(t TestReporter, mock *Mock) *Mock {
	t.Helper()

	err := mock.Enable()
	if err != nil {
		t.Fatalf("shimtest: %v", err)

		return mock
	}

	t.Cleanup(mock.Disable)

	return mock
}

// GetInstance returns the process-wide registry.
func GetInstance() *Registry {
	return core.Instance()
}

// Install registers a generated shim's original in the process-wide table. Generated code calls it once per shim
// and consults the returned Shim on every call. It panics on program-text mistakes.
func Install[F any](scope, name string, original F) *Shim {
	shim, err := core.Shims().Install(core.NewIdentity(scope, name), original)
	if err != nil {
		panic(err)
	}

	return shim
}

// MatchValue checks if actual matches expected, which may be a Matcher or a plain value.
func MatchValue(actual, expected any) (bool, string) {
	return core.MatchValue(actual, expected)
}

// New creates a disabled mock that replaces scope.name with replacement. The replacement has the original's own
// func type, or is a Func when the original returns at most one value.
func New[F any](scope, name string, replacement F, opts ...Option) *Mock {
	return core.NewMock(scope, name, replacement, opts...)
}

// NewRegistry creates an independent registry.
func NewRegistry() *Registry {
	return core.NewRegistry()
}

// NewShimTable creates an independent shim table consulting registry. Pair it with WithShims and DefineIn to keep
// a test's shims and mocks out of the process-wide table.
func NewShimTable(registry *Registry) *ShimTable {
	return core.NewShimTable(registry)
}

// Optional declares a parameter the original gives a default to.
func Optional(name string) Param {
	return Param{Name: name, HasDefault: true}
}

// OrOmitted returns *value, or Omitted when value is nil. Typed wrappers around a uniform shim use it to pass
// optional arguments through.
func OrOmitted[T any](value *T) any {
	if value == nil {
		return core.Omitted
	}

	return *value
}

// Reference declares a pointer parameter whose target the original or the mock may modify.
func Reference(name string) Param {
	return Param{Name: name, IsReference: true}
}

// Required declares a parameter every call must supply.
func Required(name string) Param {
	return Param{Name: name}
}

// Result returns result index of a mock call as T. Generated shims use it to turn results back into their
// declared types.
func Result[T any](results []any, index int) T {
	if index < 0 || index >= len(results) {
		var zero T

		return zero
	}

	return core.As[T](results[index])
}

// Shims returns the process-wide shim table.
func Shims() *ShimTable {
	return core.Shims()
}

// Spread turns a variadic tail into individual arguments, the way shims record it.
func Spread[T any](values []T) []any {
	args := make([]any, len(values))
	for i, value := range values {
		args[i] = value
	}

	return args
}

// Variadic declares the variadic tail.
func Variadic(name string) Param {
	return Param{Name: name, IsVariadic: true}
}

// WithShims makes a mock use table, and its registry, instead of the process-wide pair.
func WithShims(table *ShimTable) Option {
	return core.WithShims(table)
}

func mustForwarder[F any](table *ShimTable, id Identity) F {
	shim, err := table.Materialize(id)
	if err != nil {
		panic(err)
	}

	forwarder, ok := shim.Forwarder().(F)
	if !ok {
		panic(&core.ReflectionError{Function: id.String(), Err: core.ErrSignatureMismatch})
	}

	return forwarder
}
