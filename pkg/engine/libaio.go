//go:build linux

package engine

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const iocbCmdPwrite = 1

// Kernel structures (Standard 64-bit layout for x86_64 and arm64)
type iocb struct {
	Data      uint64
	Key       uint32
	RwFlags   uint32
	OpCode    uint16
	ReqPrio   int16
	Fd        uint32
	Buf       uint64
	NBytes    uint64
	Offset    int64
	Reserved2 uint64
	Flags     uint32
	ResFd     uint32
}

type ioEvent struct {
	Data uint64
	Obj  uint64
	Res  int64
	Res2 int64
}

// aioTarget issues each write as one kernel AIO pwrite and reaps it before
// returning, so a sample covers io_submit through io_getevents.
type aioTarget struct {
	fd     int
	ctx    uint64
	off    int64
	cb     iocb
	cbs    [1]*iocb
	events [1]ioEvent
}

func openAIO(path string, direct bool) (*aioTarget, error) {
	fd, err := openFD(path, direct)
	if err != nil {
		return nil, err
	}
	a := &aioTarget{fd: fd}
	if _, _, errno := unix.Syscall(unix.SYS_IO_SETUP, 1, uintptr(unsafe.Pointer(&a.ctx)), 0); errno != 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("io_setup failed: %w", errno)
	}
	return a, nil
}

func (a *aioTarget) Write(buf []byte) (int, error) {
	a.cb = iocb{
		Fd:     uint32(a.fd),
		OpCode: iocbCmdPwrite,
		NBytes: uint64(len(buf)),
		Offset: a.off,
	}
	if len(buf) > 0 {
		a.cb.Buf = uint64(uintptr(unsafe.Pointer(&buf[0])))
	}
	a.cbs[0] = &a.cb

	nSub, _, errno := unix.Syscall(unix.SYS_IO_SUBMIT, uintptr(a.ctx), 1, uintptr(unsafe.Pointer(&a.cbs[0])))
	if errno != 0 {
		return 0, fmt.Errorf("io_submit failed: %w", errno)
	}
	if nSub != 1 {
		return 0, fmt.Errorf("io_submit submitted %d < 1", nSub)
	}

	for {
		nEvt, _, errno := unix.Syscall6(unix.SYS_IO_GETEVENTS, uintptr(a.ctx), 1, 1, uintptr(unsafe.Pointer(&a.events[0])), 0, 0)
		if errno == unix.EINTR {
			continue
		}
		if errno != 0 {
			return 0, fmt.Errorf("io_getevents failed: %w", errno)
		}
		if nEvt == 1 {
			break
		}
	}

	res := a.events[0].Res
	if res < 0 {
		return 0, unix.Errno(-res)
	}
	a.off += res
	return int(res), nil
}

func (a *aioTarget) Sync() error {
	if err := syncErr(unix.Fsync(a.fd)); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	return nil
}

func (a *aioTarget) Close() error {
	unix.Syscall(unix.SYS_IO_DESTROY, uintptr(a.ctx), 0, 0)
	return unix.Close(a.fd)
}
