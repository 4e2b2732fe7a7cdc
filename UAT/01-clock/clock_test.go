package clock_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/toejough/shimtest"
	clock "github.com/toejough/shimtest/UAT/01-clock"
	"github.com/toejough/shimtest/match"
)

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestStamp_UsesTheMockedClock(t *testing.T) {
	g := NewWithT(t)

	fixed := time.Date(2024, time.March, 9, 17, 30, 0, 0, time.UTC)
	mock := shimtest.Enable(t, shimtest.New(scope, "now", func() time.Time { return fixed }))

	g.Expect(clock.Stamp()).To(Equal("2024-03-09T17:30:00Z"))
	g.Expect(clock.Stamp()).To(Equal("2024-03-09T17:30:00Z"))
	g.Expect(mock).To(match.HaveCallCount(2))
	g.Expect(mock).To(match.HaveCall(0))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestElapsed_AdvancingClock(t *testing.T) {
	g := NewWithT(t)

	start := time.Date(2024, time.March, 9, 17, 30, 0, 0, time.UTC)
	ticks := 0

	shimtest.Enable(t, shimtest.New(scope, "now", func() time.Time {
		ticks++

		return start.Add(time.Duration(ticks) * 1500 * time.Millisecond)
	}))

	g.Expect(clock.Elapsed(start)).To(Equal(time.Second))
	g.Expect(clock.Elapsed(start)).To(Equal(3 * time.Second))
}

//nolint:paralleltest // Reads the process-wide registry
func TestStamp_RealClockWithoutMock(t *testing.T) {
	g := NewWithT(t)

	before := time.Now().UTC().Truncate(time.Second)
	stamp, err := time.Parse(time.RFC3339, clock.Stamp())

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stamp).To(BeTemporally(">=", before))
	g.Expect(stamp).To(BeTemporally("<=", time.Now().UTC().Add(time.Second)))
}

//nolint:paralleltest // Enables a mock in the process-wide registry
func TestNow_DisableRestoresTheRealClock(t *testing.T) {
	g := NewWithT(t)

	fixed := time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC)
	mock := shimtest.New(scope, "now", func() time.Time { return fixed })

	g.Expect(mock.Enable()).To(Succeed())
	g.Expect(clock.Stamp()).To(Equal("1999-12-31T23:59:59Z"))

	mock.Disable()

	g.Expect(clock.Stamp()).NotTo(Equal("1999-12-31T23:59:59Z"))
	g.Expect(mock).To(match.HaveCallCount(1))
}

// unexported constants.
const (
	scope = "github.com/toejough/shimtest/UAT/01-clock"
)
