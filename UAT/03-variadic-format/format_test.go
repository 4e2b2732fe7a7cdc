package format_test

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/shimtest"
	format "github.com/toejough/shimtest/UAT/03-variadic-format"
	"github.com/toejough/shimtest/match"
)

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestScore_RecordsTheVariadicTailSpreadOut(t *testing.T) {
	g := NewWithT(t)

	sprintf := shimtest.Enable(t, shimtest.New(scope, "sprintf", func(layout string, args ...any) string {
		return strings.ToUpper(fmt.Sprintf(layout, args...))
	}))

	g.Expect(format.Score("ada", 42)).To(Equal("ADA SCORED 42"))
	g.Expect(sprintf).To(match.HaveCall(0, "%s scored %d", "ada", 42))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestHeader_EmptyVariadicTail(t *testing.T) {
	g := NewWithT(t)

	sprintf := shimtest.Enable(t, shimtest.New(scope, "sprintf", shimtest.Func(func(args ...any) any {
		return fmt.Sprintf("<%d args>", len(args))
	})))

	g.Expect(format.Header("Scores")).To(Equal("<1 args>"))
	g.Expect(sprintf).To(match.HaveCall(0, "Scores"))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestTable_CallsInOrder(t *testing.T) {
	g := NewWithT(t)

	sprintf := shimtest.Enable(t, shimtest.New(scope, "sprintf", func(string, ...any) string { return "-" }))

	lines := format.Table([]string{"ada", "bob", "cy"}, map[string]int{"ada": 3, "bob": 1})

	g.Expect(lines).To(Equal([]string{"-", "-", "-"}))
	g.Expect(sprintf).To(match.HaveCallCount(3))
	g.Expect(sprintf).To(match.HaveCall(1, match.BeAny, "bob", 1))
	g.Expect(sprintf).To(match.HaveCall(2, match.BeAny, "cy", match.Satisfy(func(points int) error {
		if points != 0 {
			return fmt.Errorf("expected a missing player to score 0, got %d", points)
		}

		return nil
	})))
}

//nolint:paralleltest // Reads the process-wide registry
func TestScore_UnmockedFormatsNormally(t *testing.T) {
	g := NewWithT(t)

	g.Expect(format.Score("ada", 42)).To(Equal("ada scored 42"))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestScore_ReplacementPanicPropagatesAndIsRecorded(t *testing.T) {
	g := NewWithT(t)

	sprintf := shimtest.Enable(t, shimtest.New(scope, "sprintf", func(string, ...any) string {
		panic("formatter exploded")
	}))

	g.Expect(func() { format.Score("ada", 1) }).To(PanicWith("formatter exploded"))
	g.Expect(sprintf).To(match.HaveCallCount(1))
}

// unexported constants.
const (
	scope = "github.com/toejough/shimtest/UAT/03-variadic-format"
)
