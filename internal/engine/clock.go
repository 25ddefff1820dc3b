package engine

import "time"

// Clock supplies the timestamps written into fix records.
//
// Production code uses SystemClock. Tests inject a deterministic clock (see
// testutil.FixedClock) so fix logs and reports are reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }
