package core

import (
	"errors"
	"fmt"
)

// ArityError reports a call whose arguments do not fit the shim's declared parameters.
type ArityError struct {
	Function string
	Detail   string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Detail)
}

func (e *ArityError) Unwrap() error {
	return ErrArity
}

// MockEnabledError is returned by Mock.Enable when the function already has an enabled mock.
type MockEnabledError struct {
	Function string
}

func (e *MockEnabledError) Error() string {
	return e.Function + " is already enabled. Call Disable() on the existing mock."
}

func (e *MockEnabledError) Unwrap() error {
	return ErrAlreadyRegistered
}

// ReflectionError reports that a function's signature could not be discovered or mirrored.
// The mock that hit it stays disabled.
type ReflectionError struct {
	Function string
	Err      error
}

func (e *ReflectionError) Error() string {
	return fmt.Sprintf("cannot mirror %s: %v", e.Function, e.Err)
}

func (e *ReflectionError) Unwrap() error {
	return e.Err
}

// Exported variables.
var (
	// ErrAlreadyRegistered means another mock already intercepts the function.
	ErrAlreadyRegistered = errors.New("function already has an active mock")
	// ErrArity means a call supplied too few, too many, or wrongly omitted arguments.
	ErrArity = errors.New("argument count mismatch")
	// ErrInvalidName means the scope or function name cannot identify a function.
	ErrInvalidName = errors.New("invalid function identity")
	// ErrInvalidSignature means declared parameters are not in a callable order.
	ErrInvalidSignature = errors.New("invalid parameter list")
	// ErrNotAFunction means a value given as an original or a replacement is not a func.
	ErrNotAFunction = errors.New("not a function")
	// ErrSignatureMismatch means the replacement cannot stand in for the original.
	ErrSignatureMismatch = errors.New("replacement signature does not match original")
	// ErrUnknownFunction means no original was declared for the identity.
	ErrUnknownFunction = errors.New("no function declared for identity")
)
