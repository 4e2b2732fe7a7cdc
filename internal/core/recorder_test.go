package core_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/shimtest/internal/core"
)

func TestRecorder_Calls_InOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	recorder := core.NewRecorder()
	recorder.Record([]any{1, "a"})
	recorder.Record(nil)
	recorder.Record([]any{2.5})

	g.Expect(recorder.Count()).To(Equal(3))
	g.Expect(recorder.Calls()).To(Equal([]core.Call{
		{Args: []any{1, "a"}},
		{Args: []any{}},
		{Args: []any{2.5}},
	}))

	last, ok := recorder.Last()
	g.Expect(ok).To(BeTrue())
	g.Expect(last.Args).To(Equal([]any{2.5}))
}

func TestRecorder_Last_Empty(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, ok := core.NewRecorder().Last()

	g.Expect(ok).To(BeFalse())
}

// TestRecorder_Record_Snapshots verifies later changes to the caller's slice do not rewrite history.
func TestRecorder_Record_Snapshots(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	args := []any{1, 2}
	recorder := core.NewRecorder()
	recorder.Record(args)

	args[0] = 99

	g.Expect(recorder.Calls()[0].Args).To(Equal([]any{1, 2}))
}

// TestRecorder_Calls_Property proves the recorder returns exactly what was recorded, in order.
func TestRecorder_Calls_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		lists := rapid.SliceOf(rapid.SliceOf(rapid.Int())).Draw(rt, "calls")
		recorder := core.NewRecorder()

		for _, list := range lists {
			args := make([]any, len(list))
			for i, v := range list {
				args[i] = v
			}

			recorder.Record(args)
		}

		calls := recorder.Calls()
		if len(calls) != len(lists) {
			rt.Fatalf("expected %d calls, got %d", len(lists), len(calls))
		}

		for i, list := range lists {
			if len(calls[i].Args) != len(list) {
				rt.Fatalf("call %d: expected %d args, got %d", i, len(list), len(calls[i].Args))
			}

			for j, v := range list {
				if calls[i].Args[j] != v {
					rt.Fatalf("call %d arg %d: expected %d, got %v", i, j, v, calls[i].Args[j])
				}
			}
		}
	})
}

func TestCall_Matches(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	call := core.Call{Args: []any{42, "hello", []int{1, 2}}}

	g.Expect(call.Matches(42, "hello", []int{1, 2})).To(Succeed())
	g.Expect(call.Matches(BeNumerically(">", 40), HavePrefix("he"), HaveLen(2))).To(Succeed())
	g.Expect(call.Matches(42, "hello")).To(MatchError(ContainSubstring("expected 2 args, got 3")))
	g.Expect(call.Matches(41, "hello", []int{1, 2})).To(MatchError(ContainSubstring("arg 0")))
	g.Expect(call.Matches(42, HaveSuffix("x"), []int{1, 2})).To(MatchError(ContainSubstring("arg 1")))
}
