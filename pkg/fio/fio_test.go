package fio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runningwild/writeperf/pkg/config"
)

func TestGenerateJob(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    []string
		notWant []string
	}{
		{
			name: "default descriptor",
			cfg:  config.Config{Target: "/dev/sda", Size: 1000000, Count: 100, Mode: config.ModeWrite},
			want: []string{"ioengine=sync\n", "filename=/dev/sda\n", "bs=1000000\n", "direct=0\n",
				"rw=write\n", "size=100000000\n", "number_ios=100\n", "end_fsync=1\n"},
		},
		{
			name:    "uring direct nosync",
			cfg:     config.Config{Target: "/data/f", Size: 4096, Count: 8, Mode: config.ModeUring, Direct: true, NoSync: true},
			want:    []string{"ioengine=io_uring\n", "direct=1\n", "size=32768\n"},
			notWant: []string{"end_fsync"},
		},
		{
			name: "libaio",
			cfg:  config.Config{Target: "/data/f", Size: 512, Count: 1, Mode: config.ModeLibAIO},
			want: []string{"ioengine=libaio\n"},
		},
		{
			name: "fwrite ignores direct",
			cfg:  config.Config{Target: "/data/f", Size: 512, Count: 1, Mode: config.ModeFwrite, Direct: true},
			want: []string{"ioengine=sync\n", "direct=0\n"},
		},
		{
			name:    "empty writes",
			cfg:     config.Config{Target: "/data/f", Size: 0, Count: 10, Mode: config.ModeWrite},
			want:    []string{"bs=0\n", "number_ios=10\n"},
			notWant: []string{"size="},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := GenerateJob(&tt.cfg)
			require.True(t, strings.HasPrefix(job, "[global]\n"))
			require.True(t, strings.HasSuffix(job, "\n[writeperf]\n"))
			for _, w := range tt.want {
				require.Contains(t, job, w)
			}
			for _, nw := range tt.notWant {
				require.NotContains(t, job, nw)
			}
		})
	}
}

func TestWriteJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.fio")
	cfg := &config.Config{Target: "/tmp/t", Size: 10, Count: 2, Mode: config.ModeWrite}
	require.NoError(t, WriteJob(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, GenerateJob(cfg), string(data))

	require.Error(t, WriteJob(filepath.Join(t.TempDir(), "nope", "job.fio"), cfg))
}
