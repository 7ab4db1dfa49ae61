// Command writeperf measures write throughput and per-call write latency of
// a file or block device.
//
// Usage:
//
//	writeperf <file> [options]
//
// It writes the same buffer count times, timing every write call, then
// syncs the target and prints the totals.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/runningwild/writeperf/pkg/bench"
	"github.com/runningwild/writeperf/pkg/config"
	"github.com/runningwild/writeperf/pkg/errs"
	"github.com/runningwild/writeperf/pkg/fio"
	"github.com/runningwild/writeperf/pkg/report"
)

const usageText = `Usage: writeperf <file> [options]
options:
   -s, --size <arg>
         buffer size (default: 1000000 byte)
   -c, --count <arg>
         buffer count (default: 100)
   -F, --fwrite
         Use fwrite instead of write.
   -E, --engine <arg>
         write, fwrite, uring or libaio (default: write)
   -D, --direct
         Open the target with O_DIRECT.
   -U, --nosync
         Do not flush data from cache to file to complete
         (a failing sync aborts the run with an I/O error)
   -S, --stats <arg>
         Save write calls timings to file
   -L, --latency
         Print fastest and slowest write call
   -J, --json <arg>
         Save the result as JSON
   --fio-job <arg>
         Save an equivalent fio job file
   --config <arg>
         Load options from a YAML file
   --write-config <arg>
         Save the effective options as YAML
   -v, --verbose
         Debug logging to stderr
   -h, --help
         Show this help

writeperf /dev/sda -S write_res.txt
`

// Flags holds all supported CLI flags.
type Flags struct {
	ConfigFile  string
	WriteConfig string

	Size    int
	Count   int
	Fwrite  bool
	Engine  string
	Direct  bool
	NoSync  bool
	Stats   string
	JSON    string
	FioJob  string
	Latency bool
	Verbose bool
	Help    bool
}

func SetupFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&f.WriteConfig, "write-config", "", "Save the effective configuration to this YAML file")

	fs.IntVar(&f.Size, "s", config.DefaultSize, "Buffer size")
	fs.IntVar(&f.Size, "size", config.DefaultSize, "Buffer size")
	fs.IntVar(&f.Count, "c", config.DefaultCount, "Buffer count")
	fs.IntVar(&f.Count, "count", config.DefaultCount, "Buffer count")
	fs.BoolVar(&f.Fwrite, "F", false, "Use buffered stream writes")
	fs.BoolVar(&f.Fwrite, "fwrite", false, "Use buffered stream writes")
	fs.StringVar(&f.Engine, "E", string(config.ModeWrite), "Write engine")
	fs.StringVar(&f.Engine, "engine", string(config.ModeWrite), "Write engine")
	fs.BoolVar(&f.Direct, "D", false, "Use O_DIRECT")
	fs.BoolVar(&f.Direct, "direct", false, "Use O_DIRECT")
	fs.BoolVar(&f.NoSync, "U", false, "Skip the final sync")
	fs.BoolVar(&f.NoSync, "nosync", false, "Skip the final sync")
	fs.StringVar(&f.Stats, "S", "", "Save write call timings to file")
	fs.StringVar(&f.Stats, "stats", "", "Save write call timings to file")
	fs.StringVar(&f.Stats, "save", "", "Save write call timings to file")
	fs.StringVar(&f.JSON, "J", "", "Save the result as JSON")
	fs.StringVar(&f.JSON, "json", "", "Save the result as JSON")
	fs.StringVar(&f.FioJob, "fio-job", "", "Save an equivalent fio job file")
	fs.BoolVar(&f.Latency, "L", false, "Print min/max write call duration")
	fs.BoolVar(&f.Latency, "latency", false, "Print min/max write call duration")
	fs.BoolVar(&f.Verbose, "v", false, "Debug logging")
	fs.BoolVar(&f.Verbose, "verbose", false, "Debug logging")
	fs.BoolVar(&f.Help, "h", false, "Show help")
	fs.BoolVar(&f.Help, "help", false, "Show help")
	return f
}

// Parse parses args, allowing options before and after positional
// arguments, and returns the positionals in order.
func Parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// LoadConfig builds the run configuration: the YAML file if one was given,
// with every explicitly set flag applied on top.
func (f *Flags) LoadConfig(fs *flag.FlagSet, target string) (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigFile != "" {
		loaded, err := config.Load(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if target != "" {
		cfg.Target = target
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "s", "size":
			cfg.Size = f.Size
		case "c", "count":
			cfg.Count = f.Count
		case "E", "engine":
			cfg.Mode = config.Mode(f.Engine)
		case "D", "direct":
			cfg.Direct = f.Direct
		case "U", "nosync":
			cfg.NoSync = f.NoSync
		case "S", "stats", "save":
			cfg.StatsFile = f.Stats
		case "J", "json":
			cfg.JSONFile = f.JSON
		case "fio-job":
			cfg.FioJob = f.FioJob
		}
	})
	if f.Fwrite {
		cfg.Mode = config.ModeFwrite
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *Flags) MaybeWriteConfig(log *slog.Logger, cfg *config.Config) {
	if f.WriteConfig == "" {
		return
	}
	if err := config.Save(f.WriteConfig, cfg); err != nil {
		log.Warn("failed to write config file", "err", err)
		return
	}
	log.Info("configuration written", "path", f.WriteConfig)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("writeperf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }
	f := SetupFlags(fs)

	positional, err := Parse(fs, args)
	if err != nil {
		return errs.ExitCode(errs.ErrInvalidArgument)
	}
	if f.Help {
		fmt.Fprint(stdout, usageText)
		return 0
	}

	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var target string
	if len(positional) > 0 {
		target = positional[0]
	}
	if len(positional) > 1 {
		log.Warn("ignoring extra arguments", "args", positional[1:])
	}

	cfg, err := f.LoadConfig(fs, target)
	if err != nil {
		return fail(stderr, err)
	}
	f.MaybeWriteConfig(log, cfg)

	if cfg.FioJob != "" {
		if err := fio.WriteJob(cfg.FioJob, cfg); err != nil {
			log.Warn("failed to write fio job", "err", err)
		}
	}

	report.PrintBanner(stdout, cfg)

	res, err := bench.New(log).Run(cfg)
	if err != nil {
		return fail(stderr, err)
	}

	report.Print(stdout, res)
	if f.Latency {
		report.PrintLatency(stdout, res)
	}

	if cfg.StatsFile != "" {
		if err := report.SaveSamples(cfg.StatsFile, res.Samples); err != nil {
			log.Warn("samples not saved", "path", cfg.StatsFile, "err", err)
		}
	}
	if cfg.JSONFile != "" {
		if err := report.SaveJSON(cfg.JSONFile, cfg, res); err != nil {
			log.Warn("result not saved", "err", err)
		}
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "writeperf: %s\n", err)
	if errors.Is(err, errs.ErrInvalidArgument) {
		fmt.Fprint(stderr, "run 'writeperf -h' for usage\n")
	}
	return errs.ExitCode(err)
}
