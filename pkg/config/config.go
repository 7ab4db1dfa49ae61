package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/runningwild/writeperf/pkg/errs"
)

// Mode selects the write primitive used by the benchmark loop.
type Mode string

const (
	ModeWrite  Mode = "write"  // raw descriptor write(2)
	ModeFwrite Mode = "fwrite" // user-space buffered stream
	ModeUring  Mode = "uring"  // one io_uring SQE per write
	ModeLibAIO Mode = "libaio" // one io_submit/io_getevents round trip per write
)

const (
	DefaultSize  = 1000000
	DefaultCount = 100
)

// Config represents a single benchmark run.
type Config struct {
	Target string `yaml:"target"`
	Size   int    `yaml:"size"`  // bytes per write
	Count  int    `yaml:"count"` // number of writes
	Mode   Mode   `yaml:"mode"`
	NoSync bool   `yaml:"nosync"`
	Direct bool   `yaml:"direct"` // O_DIRECT, ignored by fwrite

	// Outputs
	StatsFile string `yaml:"stats_file,omitempty"`
	JSONFile  string `yaml:"json_file,omitempty"`
	FioJob    string `yaml:"fio_job,omitempty"`
}

// Default returns a Config with the stock size, count and mode.
func Default() *Config {
	return &Config{
		Size:  DefaultSize,
		Count: DefaultCount,
		Mode:  ModeWrite,
	}
}

// Load reads a YAML config file. Size, count and mode fall back to their
// defaults when absent.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w: %w", path, errs.ErrInvalidArgument, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w: %w", path, errs.ErrInvalidArgument, err)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeWrite
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the loop cannot run. A zero size is
// accepted: it times count empty writes.
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("no file path specified: %w", errs.ErrInvalidArgument)
	}
	if c.Size < 0 {
		return fmt.Errorf("negative size %d: %w", c.Size, errs.ErrInvalidArgument)
	}
	if c.Count < 0 {
		return fmt.Errorf("negative count %d: %w", c.Count, errs.ErrInvalidArgument)
	}
	switch c.Mode {
	case ModeWrite, ModeFwrite, ModeUring, ModeLibAIO:
	default:
		return fmt.Errorf("unknown mode %q: %w", c.Mode, errs.ErrInvalidArgument)
	}
	if c.Size > 0 && int64(c.Count) > math.MaxInt64/int64(c.Size) {
		return fmt.Errorf("%d x %d bytes overflows: %w", c.Count, c.Size, errs.ErrInvalidArgument)
	}
	return nil
}

// TotalBytes is the number of bytes a complete run writes.
func (c *Config) TotalBytes() int64 {
	return int64(c.Size) * int64(c.Count)
}
