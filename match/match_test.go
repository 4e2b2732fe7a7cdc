package match_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/shimtest/internal/core"
	"github.com/toejough/shimtest/match"
)

func TestBeAny_MatchesEverything(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		value := rapid.OneOf(
			rapid.Just[any](nil),
			rapid.Map(rapid.Int(), func(i int) any { return i }),
			rapid.Map(rapid.String(), func(s string) any { return s }),
		).Draw(rt, "value")

		ok, err := match.BeAny.Match(value)
		if err != nil || !ok {
			rt.Fatalf("BeAny rejected %#v: %v", value, err)
		}
	})
}

func TestHaveCall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	recorder := core.NewRecorder()
	recorder.Record([]any{"HOME", 3})

	g.Expect(recorder).To(match.HaveCall(0, "HOME", BeNumerically(">", 2)))
	g.Expect(recorder).To(match.HaveCall(0, match.BeAny, 3))
	g.Expect(recorder).NotTo(match.HaveCall(0, "PATH", 3))
	g.Expect(recorder).NotTo(match.HaveCall(1, "HOME", 3))
	g.Expect(recorder).NotTo(match.HaveCall(0, "HOME"))
}

func TestHaveCall_FailureMessageNamesTheMismatch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	recorder := core.NewRecorder()
	recorder.Record([]any{"HOME"})

	matcher := match.HaveCall(0, "PATH")
	ok, err := matcher.Match(recorder)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ok).To(BeFalse())
	g.Expect(matcher.FailureMessage(recorder)).To(ContainSubstring(`arg 0`))
}

func TestHaveCallCount(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		calls := rapid.IntRange(0, 20).Draw(rt, "calls")
		recorder := core.NewRecorder()

		for i := range calls {
			recorder.Record([]any{i})
		}

		ok, err := match.HaveCallCount(calls).Match(recorder)
		if err != nil || !ok {
			rt.Fatalf("expected %d calls to match: %v", calls, err)
		}

		ok, _ = match.HaveCallCount(calls + 1).Match(recorder)
		if ok {
			rt.Fatalf("count %d matched a recorder with %d calls", calls+1, calls)
		}
	})
}

func TestHaveCallCount_AcceptsMocks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := core.NewMock("example.com/app", "Getenv", func(string) string { return "" })

	g.Expect(mock).To(match.HaveCallCount(0))
}

func TestHaveCallCount_RejectsOtherValues(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := match.HaveCallCount(0).Match("not a recorder")

	g.Expect(err).To(MatchError(ContainSubstring("type mismatch")))
}

func TestSatisfy(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	nonEmpty := match.Satisfy(func(s string) error {
		if s == "" {
			return errors.New("empty")
		}

		return nil
	})

	g.Expect("HOME").To(nonEmpty)
	g.Expect("").NotTo(nonEmpty)

	ok, err := nonEmpty.Match("")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ok).To(BeFalse())
	g.Expect(nonEmpty.FailureMessage("")).To(ContainSubstring("empty"))

	_, err = nonEmpty.Match(42)
	g.Expect(err).To(HaveOccurred())
}

func TestSatisfy_InsideCallMatches(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	call := core.Call{Args: []any{7}}

	g.Expect(call.Matches(match.Satisfy(func(n int) error {
		if n%2 == 0 {
			return errors.New("even")
		}

		return nil
	}))).To(Succeed())
}
