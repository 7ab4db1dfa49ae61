package engine

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// stream buffers writes in user space like a stdio FILE. The buffer is sized
// to the target's preferred I/O block, which is what stdio picks; writes at
// least that large bypass it.
type stream struct {
	f *os.File
	w *bufio.Writer
}

func openStream(path string) (*stream, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	bs := 0
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err == nil {
		bs = int(st.Blksize)
	}
	// bufio falls back to its default size for bs <= 0.
	return &stream{f: f, w: bufio.NewWriterSize(f, bs)}, nil
}

func (s *stream) Write(buf []byte) (int, error) {
	return s.w.Write(buf)
}

// Sync flushes the user-space buffer, then the kernel cache.
func (s *stream) Sync() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := syncErr(s.f.Sync()); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	return nil
}

// Close flushes whatever is still buffered before closing, as fclose does.
func (s *stream) Close() error {
	flushErr := s.w.Flush()
	if err := s.f.Close(); err != nil {
		return err
	}
	return flushErr
}
