package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/runningwild/writeperf/pkg/config"
	"github.com/runningwild/writeperf/pkg/errs"
)

func openOrSkip(t *testing.T, cfg *config.Config) Target {
	t.Helper()
	tgt, err := Open(cfg)
	if err != nil && (cfg.Mode == config.ModeUring || cfg.Mode == config.ModeLibAIO) {
		t.Skipf("%s not available here: %v", cfg.Mode, err)
	}
	require.NoError(t, err)
	return tgt
}

func TestModesWriteSequentially(t *testing.T) {
	modes := []config.Mode{config.ModeWrite, config.ModeFwrite, config.ModeUring, config.ModeLibAIO}
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "target")
			tgt := openOrSkip(t, &config.Config{Target: path, Mode: mode})

			a := bytes.Repeat([]byte{'a'}, 3000)
			b := bytes.Repeat([]byte{'b'}, 5000)
			for _, buf := range [][]byte{a, b, {}} {
				n, err := tgt.Write(buf)
				require.NoError(t, err)
				require.Equal(t, len(buf), n)
			}
			require.NoError(t, tgt.Sync())
			require.NoError(t, tgt.Close())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, append(append([]byte{}, a...), b...), data)

			info, err := os.Stat(path)
			require.NoError(t, err)
			if mode == config.ModeFwrite {
				require.NotZero(t, info.Mode().Perm()&0600)
			} else {
				require.Equal(t, os.FileMode(0600), info.Mode().Perm())
			}
		})
	}
}

func TestDescriptorDoesNotTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0600))

	tgt := openOrSkip(t, &config.Config{Target: path, Mode: config.ModeWrite})
	_, err := tgt.Write([]byte("xy"))
	require.NoError(t, err)
	require.NoError(t, tgt.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "xy23456789", string(data))
}

func TestStreamTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0600))

	tgt := openOrSkip(t, &config.Config{Target: path, Mode: config.ModeFwrite})
	_, err := tgt.Write([]byte("xy"))
	require.NoError(t, err)
	// Close flushes the stream buffer even without Sync.
	require.NoError(t, tgt.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "xy", string(data))
}

func TestOpenFailureIsInvalidArgument(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "target")
	for _, mode := range []config.Mode{config.ModeWrite, config.ModeFwrite} {
		_, err := Open(&config.Config{Target: missing, Mode: mode})
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
	}
	_, err := Open(&config.Config{Target: missing, Mode: "bogus"})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestSyncOnCharDevice(t *testing.T) {
	tgt := openOrSkip(t, &config.Config{Target: os.DevNull, Mode: config.ModeWrite})
	defer tgt.Close()
	_, err := tgt.Write(make([]byte, 512))
	require.NoError(t, err)
	require.NoError(t, tgt.Sync())
}

func TestAllocBuffer(t *testing.T) {
	buf, err := AllocBuffer(1000000)
	require.NoError(t, err)
	require.Len(t, buf, 1000000)
	require.Zero(t, uintptr(unsafe.Pointer(&buf[0]))%uintptr(os.Getpagesize()))
	buf[len(buf)-1] = 1
	require.NoError(t, FreeBuffer(buf))

	empty, err := AllocBuffer(0)
	require.NoError(t, err)
	require.Empty(t, empty)
	require.NoError(t, FreeBuffer(empty))
}

func TestZeroLengthWriteKeepsOffset(t *testing.T) {
	for _, mode := range []config.Mode{config.ModeWrite, config.ModeUring, config.ModeLibAIO} {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "target")
			tgt := openOrSkip(t, &config.Config{Target: path, Mode: mode})

			for _, buf := range [][]byte{{}, []byte("abc"), {}, []byte("de")} {
				n, err := tgt.Write(buf)
				require.NoError(t, err)
				require.Equal(t, len(buf), n)
			}
			require.NoError(t, tgt.Close())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, "abcde", string(data))
		})
	}
}

func TestFreeBufferReportsBadMapping(t *testing.T) {
	require.Error(t, FreeBuffer(make([]byte, 16)))
}
