package core

import (
	"fmt"
	"reflect"
)

// Matcher is satisfied by gomega matchers and by the matchers in the match package.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// MatchValue compares one recorded shim argument with what a test expects of it. An expected Matcher judges the
// argument itself; any other expected value must be reflect.DeepEqual to it. The string explains a mismatch and is
// empty on a match.
func MatchValue(recorded, want any) (bool, string) {
	matcher, isMatcher := want.(Matcher)
	if !isMatcher {
		if reflect.DeepEqual(recorded, want) {
			return true, ""
		}

		return false, fmt.Sprintf("recorded %#v, want %#v", recorded, want)
	}

	ok, err := matcher.Match(recorded)

	switch {
	case err != nil:
		return false, fmt.Sprintf("matcher failed on recorded %#v: %v", recorded, err)
	case !ok:
		return false, matcher.FailureMessage(recorded)
	default:
		return true, ""
	}
}
