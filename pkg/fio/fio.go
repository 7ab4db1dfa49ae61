// Package fio describes a benchmark run as an fio job file, so the same
// workload can be replayed with fio for comparison.
package fio

import (
	"fmt"
	"os"
	"strings"

	"github.com/runningwild/writeperf/pkg/config"
)

// GenerateJob creates a FIO job file content based on cfg.
func GenerateJob(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString("[global]\n")

	// Engine mapping. fio has no stdio engine; fwrite maps to buffered sync.
	switch cfg.Mode {
	case config.ModeUring:
		sb.WriteString("ioengine=io_uring\n")
	case config.ModeLibAIO:
		sb.WriteString("ioengine=libaio\n")
	default:
		sb.WriteString("ioengine=sync\n")
	}

	sb.WriteString(fmt.Sprintf("filename=%s\n", cfg.Target))
	sb.WriteString(fmt.Sprintf("bs=%d\n", cfg.Size))

	if cfg.Direct && cfg.Mode != config.ModeFwrite {
		sb.WriteString("direct=1\n")
	} else {
		sb.WriteString("direct=0\n")
	}

	sb.WriteString("rw=write\n")
	sb.WriteString("numjobs=1\n")
	sb.WriteString("iodepth=1\n")

	// fio rejects size=0, so an empty run has no size line.
	if total := cfg.TotalBytes(); total > 0 {
		sb.WriteString(fmt.Sprintf("size=%d\n", total))
	}
	sb.WriteString(fmt.Sprintf("number_ios=%d\n", cfg.Count))

	if !cfg.NoSync {
		sb.WriteString("end_fsync=1\n")
	}

	sb.WriteString("\n[writeperf]\n")
	return sb.String()
}

// WriteJob writes the job file for cfg to path.
func WriteJob(path string, cfg *config.Config) error {
	if err := os.WriteFile(path, []byte(GenerateJob(cfg)), 0644); err != nil {
		return fmt.Errorf("write fio job %s: %w", path, err)
	}
	return nil
}
