//go:build !linux

package clock

import "time"

var base = time.Now()

// Now falls back to the runtime's monotonic reading, relative to process start.
func Now() Timestamp {
	d := time.Since(base)
	return Timestamp{Sec: int64(d / time.Second), Nsec: int64(d % time.Second)}
}
