package engine

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/runningwild/writeperf/pkg/config"
	"github.com/runningwild/writeperf/pkg/errs"
)

// Open opens cfg.Target for the configured write mode. Descriptor based
// modes create the file with owner read/write permission and do not
// truncate it, so block devices and existing files are written in place.
func Open(cfg *config.Config) (Target, error) {
	var (
		t   Target
		err error
	)
	switch cfg.Mode {
	case config.ModeFwrite:
		t, err = openStream(cfg.Target)
	case config.ModeUring:
		t, err = openUring(cfg.Target, cfg.Direct)
	case config.ModeLibAIO:
		t, err = openAIO(cfg.Target, cfg.Direct)
	case config.ModeWrite, "":
		t, err = openDescriptor(cfg.Target, cfg.Direct)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w: %w", cfg.Target, errs.ErrInvalidArgument, err)
	}
	return t, nil
}

func openFD(path string, direct bool) (int, error) {
	flags := unix.O_WRONLY | unix.O_CREAT | unix.O_CLOEXEC
	if direct {
		if directFlag == 0 {
			return -1, errors.New("O_DIRECT is not supported on this platform")
		}
		flags |= directFlag
	}
	return unix.Open(path, flags, 0600)
}

// AllocBuffer maps an anonymous, page aligned region of size bytes. Page
// alignment satisfies O_DIRECT on every common block size. The contents are
// whatever the kernel hands out.
func AllocBuffer(size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("unable to alloc %d-byte buffer: %w: %w", size, errs.ErrOutOfMemory, err)
	}
	return buf, nil
}

// FreeBuffer releases a buffer returned by AllocBuffer.
func FreeBuffer(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return unix.Munmap(buf)
}

// syncErr drops the errors fsync returns for targets that have nothing to
// make durable (character devices, pipes).
func syncErr(err error) error {
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EROFS) {
		return nil
	}
	return err
}
