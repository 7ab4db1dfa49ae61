package engine

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// descriptor writes straight to the kernel with write(2).
type descriptor struct {
	fd int
}

func openDescriptor(path string, direct bool) (*descriptor, error) {
	fd, err := openFD(path, direct)
	if err != nil {
		return nil, err
	}
	return &descriptor{fd: fd}, nil
}

func (d *descriptor) Write(buf []byte) (int, error) {
	return unix.Write(d.fd, buf)
}

func (d *descriptor) Sync() error {
	if err := syncErr(unix.Fsync(d.fd)); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	return nil
}

func (d *descriptor) Close() error {
	return unix.Close(d.fd)
}
