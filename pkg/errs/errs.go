// Package errs holds the failure classes of a benchmark run and maps them to
// process exit statuses.
package errs

import (
	"errors"

	"golang.org/x/sys/unix"
)

var (
	// ErrInvalidArgument covers usage errors and targets that cannot be opened.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfMemory is returned when the write buffer or the sample
	// sequence cannot be allocated.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrIO is returned when a timed write fails or transfers fewer bytes
	// than requested.
	ErrIO = errors.New("i/o error")
)

// ExitCode returns the process exit status for err. Fatal classes exit with
// the negated errno truncated to a byte, the status a C main returning -EINVAL
// produces.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrOutOfMemory):
		return negErrno(unix.ENOMEM)
	case errors.Is(err, ErrIO):
		return negErrno(unix.EIO)
	default:
		return negErrno(unix.EINVAL)
	}
}

func negErrno(e unix.Errno) int {
	return int(uint8(-int(e)))
}
