package pricing_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/shimtest"
	pricing "github.com/toejough/shimtest/UAT/04-runtime-mirror"
	"github.com/toejough/shimtest/match"
)

//nolint:paralleltest // Reads the process-wide registry
func TestCheckout_Unmocked(t *testing.T) {
	g := NewWithT(t)

	total, err := pricing.Checkout(100, "wa", 10)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(total).To(Equal(99.0))

	_, err = pricing.Checkout(100, "mars", 10)
	g.Expect(err).To(MatchError(pricing.ErrUnknownRegion))
}

//nolint:paralleltest // Reads the process-wide registry
func TestRound_Unmocked(t *testing.T) {
	g := NewWithT(t)

	three := 3

	g.Expect(pricing.Round(3.14159, nil)).To(Equal(3.14))
	g.Expect(pricing.Round(3.14159, &three)).To(Equal(3.142))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestRound_MockSeesOnlySuppliedArguments(t *testing.T) {
	g := NewWithT(t)

	round := shimtest.Enable(t, shimtest.New(scope, "round", shimtest.Func(func(args ...any) any {
		return float64(len(args))
	})))

	one := 1

	g.Expect(pricing.Round(2.55, nil)).To(Equal(1.0))
	g.Expect(pricing.Round(2.55, &one)).To(Equal(2.0))
	g.Expect(round).To(match.HaveCall(0, 2.55))
	g.Expect(round).To(match.HaveCall(1, 2.55, 1))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestCheckout_MockMutatesReferenceArgument(t *testing.T) {
	g := NewWithT(t)

	discount := shimtest.Enable(t, shimtest.New(scope, "applyDiscount", shimtest.Func(func(args ...any) any {
		total, _ := args[0].(*float64)
		*total = 50

		return nil
	})))

	total, err := pricing.Checkout(100, "or", 10)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(total).To(Equal(50.0))
	g.Expect(discount).To(match.HaveCall(0, match.Satisfy(func(total *float64) error {
		if *total != 50 {
			return errors.New("expected the recorded pointer to see the mutation")
		}

		return nil
	}), 10.0))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestCheckout_TypedMockOfRuntimeShim(t *testing.T) {
	g := NewWithT(t)

	errOffline := errors.New("tax service offline")

	taxRate := shimtest.Enable(t, shimtest.New(scope, "taxRate", func(string) (float64, error) {
		return 0, errOffline
	}))

	_, err := pricing.Checkout(100, "wa", 0)

	g.Expect(err).To(MatchError(errOffline))
	g.Expect(taxRate).To(match.HaveCall(0, "wa"))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestUniformShim_RejectsTypedReplacement(t *testing.T) {
	g := NewWithT(t)

	mock := shimtest.New(scope, "round", func(float64, int) float64 { return 0 })

	g.Expect(mock.Enable()).To(MatchError(shimtest.ErrSignatureMismatch))
	g.Expect(pricing.Round(1.234, nil)).To(Equal(1.23))
}

func TestIsolatedTable_DoesNotTouchProcessWideShims(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	table := shimtest.NewShimTable(shimtest.NewRegistry())
	double := shimtest.DefineIn(table, scope, "round", func(value float64) float64 { return value * 2 })

	shimtest.Enable(t, shimtest.New(scope, "round", func(float64) float64 { return -1 }, shimtest.WithShims(table)))

	g.Expect(double(4)).To(Equal(-1.0))
	g.Expect(shimtest.GetInstance().Lookup(scope + "::round")).To(BeNil())
}

// unexported constants.
const (
	scope = "github.com/toejough/shimtest/UAT/04-runtime-mirror"
)
