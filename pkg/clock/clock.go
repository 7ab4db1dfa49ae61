// Package clock reads a monotonic clock that is not slewed by NTP or stepped
// by settimeofday, for timing individual system calls.
package clock

import "time"

// Timestamp is a point on the monotonic raw clock.
type Timestamp struct {
	Sec  int64
	Nsec int64
}

// Seconds returns t as fractional seconds since the clock's epoch.
func (t Timestamp) Seconds() float64 {
	return float64(t.Sec) + float64(t.Nsec)/1e9
}

// Elapsed returns stop - start. The whole-second and nanosecond parts are
// subtracted as integers so no precision is lost at large uptimes.
func Elapsed(start, stop Timestamp) time.Duration {
	return time.Duration(stop.Sec-start.Sec)*time.Second + time.Duration(stop.Nsec-start.Nsec)
}

// Clock is a source of monotonic timestamps.
type Clock interface {
	Now() Timestamp
}

// Raw is the system monotonic raw clock.
type Raw struct{}

func (Raw) Now() Timestamp { return Now() }
