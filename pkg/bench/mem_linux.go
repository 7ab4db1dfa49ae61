//go:build linux

package bench

import (
	"math"

	"golang.org/x/sys/unix"
)

// systemMemory returns physical RAM plus swap, the most an allocation can
// ever be backed by.
func systemMemory() uint64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return math.MaxUint64
	}
	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(si.Totalram) + uint64(si.Totalswap)) * unit
}
