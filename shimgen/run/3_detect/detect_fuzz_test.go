//nolint:testpackage // Fuzz tests for internal functions
package detect

import (
	"strings"
	"testing"

	"github.com/onsi/gomega"
	"pgregory.net/rapid"
)

// FuzzParseTarget tests ParseTarget with coverage-guided fuzzing.
// Uses rapid.MakeFuzz for smart input generation.
func FuzzParseTarget(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(func(t *rapid.T) {
		expect := gomega.NewWithT(t)

		input := rapid.OneOf(
			rapid.Just(""),
			rapid.StringMatching(`[a-z]{1,10}`),
			rapid.StringMatching(`[a-z]{1,10}\.[A-Z][a-zA-Z]{0,10}`),
			rapid.StringMatching(`[a-z]{1,10}\.[A-Z][a-zA-Z]{0,10}\.[A-Z][a-zA-Z]{0,10}`),
			rapid.String(),
		).Draw(t, "input")

		target, err := ParseTarget(input)
		if err != nil {
			expect.Expect(err).To(gomega.MatchError(errBadTarget))

			return
		}

		// Property: a parsed target prints back as its input
		expect.Expect(target.String()).To(gomega.Equal(input))

		// Property: at most one dot survives parsing
		expect.Expect(strings.Count(input, ".")).To(gomega.BeNumerically("<=", 1))
	}))
}

// FuzzGuessName tests guessName with random import paths.
// Property: the guess is one element of the path, never a version suffix of a longer path.
func FuzzGuessName(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(func(t *rapid.T) {
		expect := gomega.NewWithT(t)

		input := rapid.StringMatching(`[a-z]{1,8}(\.[a-z]{2,3})?(/[a-z]{1,8}){1,3}(/v[2-9])?`).Draw(t, "input")

		name := guessName(input)

		expect.Expect(name).NotTo(gomega.ContainSubstring("/"))
		expect.Expect(input).To(gomega.ContainSubstring(name))
		expect.Expect(majorVersionSuffix.MatchString(name)).To(gomega.BeFalse())
	}))
}
