// Package clock abstracts time acquisition so lifecycle timestamps and expiry
// checks can be driven by simulated clocks in tests instead of wall-clock waits.
package clock

import "time"

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the default clock backed by time.Now.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// Fixed is a clock frozen at a given instant. Useful in tests.
type Fixed struct {
	Instant time.Time
}

// Now returns the frozen instant.
func (f Fixed) Now() time.Time { return f.Instant }
