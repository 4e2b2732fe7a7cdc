// Package clock formats timestamps for log lines.
// Its call to time.Now goes through a generated shim, so tests can pin the clock.
package clock

import "time"

//go:generate shimgen time.Now --name now

// Elapsed returns how long ago start was, truncated to whole seconds.
func Elapsed(start time.Time) time.Duration {
	return now().Sub(start).Truncate(time.Second)
}

// Stamp returns the current time as an RFC 3339 UTC timestamp.
func Stamp() string {
	return now().UTC().Format(time.RFC3339)
}
