package core

import (
	"fmt"
	"sync"
)

// Call is one recorded invocation: the arguments exactly as the shim received them, variadic tail spread out.
type Call struct {
	Args []any
}

// Matches checks the call's arguments against expected, which may mix plain values (compared with reflect.DeepEqual)
// and matchers. It returns nil on a match, or an error describing the first mismatch.
func (c Call) Matches(expected ...any) error {
	if len(c.Args) != len(expected) {
		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("expected %d args, got %d", len(expected), len(c.Args))
	}

	for index, want := range expected {
		ok, failureMsg := MatchValue(c.Args[index], want)
		if !ok {
			//nolint:err113 // validation error with dynamic context
			return fmt.Errorf("arg %d: %s", index, failureMsg)
		}
	}

	return nil
}

// Recorder is an append-only log of the calls a mock received.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Calls returns every recorded call, oldest first.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)

	return calls
}

// Count returns the number of recorded calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

// Last returns the most recent call, if any.
func (r *Recorder) Last() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return Call{}, false
	}

	return r.calls[len(r.calls)-1], true
}

// Record appends a snapshot of args.
func (r *Recorder) Record(args []any) {
	snapshot := make([]any, len(args))
	copy(snapshot, args)

	r.mu.Lock()
	r.calls = append(r.calls, Call{Args: snapshot})
	r.mu.Unlock()
}
