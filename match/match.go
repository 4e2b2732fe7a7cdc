// Package match provides matchers for recorded shim calls and their arguments.
// It is designed to be dot-imported alongside gomega matchers:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/toejough/shimtest/match"
//	)
//
//	g.Expect(mock.Recorder()).To(HaveCallCount(2))
//	g.Expect(mock.Recorder()).To(HaveCall(0, BeNumerically(">", 0), BeAny))
package match

import (
	"errors"
	"fmt"

	"github.com/toejough/shimtest/internal/core"
)

// Matcher is the gomega.GomegaMatcher shape. Every matcher in this package satisfies it, so they work both inside
// Call.Matches and directly with gomega's Expect.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
	NegatedFailureMessage(actual any) string
}

// BeAny is a matcher that matches any value.
// Useful when you don't care about a particular argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// HaveCall matches a *core.Recorder (or a mock's Recorder()) whose call at index received arguments matching
// expected. Each expected entry may be a plain value or a matcher.
func HaveCall(index int, expected ...any) Matcher {
	return &callMatcher{index: index, expected: expected}
}

// HaveCallCount matches a recorder holding exactly count calls.
func HaveCallCount(count int) Matcher {
	return &countMatcher{count: count}
}

// Satisfy returns a matcher that uses a predicate function to check for a match.
// The predicate should return nil if the value matches, or an error describing
// the mismatch if it does not.
//
// Example:
//
//	g.Expect(mock.Recorder()).To(HaveCall(0, Satisfy(func(key string) error {
//	    if key == "" { return errors.New("expected a key") }
//	    return nil
//	})))
func Satisfy[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

// anyMatcher is the implementation of the BeAny matcher.
type anyMatcher struct{}

// FailureMessage returns an empty string since BeAny always matches.
func (anyMatcher) FailureMessage(any) string {
	return ""
}

// Match always returns true - matches any value.
func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

func (anyMatcher) NegatedFailureMessage(actual any) string {
	return fmt.Sprintf("expected %v not to match anything", actual)
}

type callMatcher struct {
	index    int
	expected []any
	lastErr  error
}

func (m *callMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected call %d of %v to match: %v", m.index, actual, m.lastErr)
}

func (m *callMatcher) Match(actual any) (bool, error) {
	recorder, err := asRecorder(actual)
	if err != nil {
		return false, err
	}

	calls := recorder.Calls()
	if m.index < 0 || m.index >= len(calls) {
		//nolint:err113 // validation error with dynamic context
		m.lastErr = fmt.Errorf("only %d calls recorded", len(calls))

		return false, nil
	}

	m.lastErr = calls[m.index].Matches(m.expected...)

	return m.lastErr == nil, nil
}

func (m *callMatcher) NegatedFailureMessage(actual any) string {
	return fmt.Sprintf("expected call %d of %v not to match %v", m.index, actual, m.expected)
}

type countMatcher struct {
	count  int
	actual int
}

func (m *countMatcher) FailureMessage(any) string {
	return fmt.Sprintf("expected %d calls, got %d", m.count, m.actual)
}

func (m *countMatcher) Match(actual any) (bool, error) {
	recorder, err := asRecorder(actual)
	if err != nil {
		return false, err
	}

	m.actual = recorder.Count()

	return m.actual == m.count, nil
}

func (m *countMatcher) NegatedFailureMessage(any) string {
	return fmt.Sprintf("expected other than %d calls", m.count)
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)

	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}

func (m *satisfyMatcher[T]) NegatedFailureMessage(actual any) string {
	return fmt.Sprintf("value %v satisfies predicate", actual)
}

// recorderSource is anything that exposes a recorder, like a mock.
type recorderSource interface {
	Recorder() *core.Recorder
}

func asRecorder(actual any) (*core.Recorder, error) {
	switch typed := actual.(type) {
	case *core.Recorder:
		return typed, nil
	case recorderSource:
		return typed.Recorder(), nil
	default:
		return nil, fmt.Errorf("%w: expected a recorder or mock, got %T", errTypeMismatch, actual)
	}
}

// unexported variables.
var (
	errTypeMismatch = errors.New("type mismatch")
)
