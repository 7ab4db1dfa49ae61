// Package bench times a sequence of fixed-size writes against one target.
//
// Each write is bracketed by two reads of the monotonic raw clock, so a
// sample is the cost of a single write call. The optional sync that follows
// the loop is timed on its own and is included in the total.
package bench

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/runningwild/writeperf/pkg/clock"
	"github.com/runningwild/writeperf/pkg/config"
	"github.com/runningwild/writeperf/pkg/engine"
	"github.com/runningwild/writeperf/pkg/errs"
)

// Result is the aggregate of one complete run.
type Result struct {
	Size  int
	Count int
	Bytes int64 // Size * Count

	// Samples[i] is the duration of the i-th write call.
	Samples []time.Duration
	Min     time.Duration
	Max     time.Duration

	Duration     time.Duration // first write through sync
	SyncDuration time.Duration // zero when the sync step was skipped
	Synced       bool
}

// Throughput returns decimal megabytes per second over the whole run. A run
// with no measurable duration reports 0.
func (r *Result) Throughput() float64 {
	secs := r.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Bytes) / 1e6 / secs
}

// sampleBytes is the in-memory size of one sample.
const sampleBytes = 8

// Runner executes benchmark runs.
type Runner struct {
	clk clock.Clock
	log *slog.Logger
	// memLimit bounds the bytes the sample sequence may take. Nil means
	// no bound.
	memLimit func() uint64
}

func New(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{clk: clock.Raw{}, log: log, memLimit: systemMemory}
}

// Run opens cfg.Target, measures cfg.Count writes of cfg.Size bytes and
// closes the target.
func (r *Runner) Run(cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Reject an unallocatable count before the target is created.
	if err := r.checkSamples(cfg.Count); err != nil {
		return nil, err
	}

	t, err := engine.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := t.Close(); err != nil {
			r.log.Warn("close target", "target", cfg.Target, "err", err)
		}
	}()
	r.log.Debug("target opened", "target", cfg.Target, "mode", cfg.Mode, "direct", cfg.Direct)

	buf, err := engine.AllocBuffer(cfg.Size)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := engine.FreeBuffer(buf); err != nil {
			r.log.Warn("free buffer", "size", len(buf), "err", err)
		}
	}()

	return r.Measure(t, buf, cfg.Count, !cfg.NoSync)
}

// Measure writes buf to t count times, recording the duration of every
// call, then syncs t if sync is set. Any failed or short write aborts the
// run with ErrIO and no Result.
func (r *Runner) Measure(t engine.Target, buf []byte, count int, sync bool) (*Result, error) {
	samples, err := r.allocSamples(count)
	if err != nil {
		return nil, err
	}

	minWrite := time.Duration(math.MaxInt64)
	maxWrite := time.Duration(0)

	start := r.clk.Now()
	for i := 0; i < count; i++ {
		ws := r.clk.Now()
		n, err := t.Write(buf)
		we := r.clk.Now()

		if err != nil {
			return nil, fmt.Errorf("write error on call %d: %w: %w", i, errs.ErrIO, err)
		}
		if n != len(buf) {
			return nil, fmt.Errorf("write error on call %d: wrote %d of %d bytes: %w", i, n, len(buf), errs.ErrIO)
		}

		d := clock.Elapsed(ws, we)
		samples[i] = d
		minWrite = min(minWrite, d)
		maxWrite = max(maxWrite, d)
	}
	r.log.Debug("write loop complete", "count", count, "size", len(buf))

	var syncDur time.Duration
	if sync {
		ss := r.clk.Now()
		if err := t.Sync(); err != nil {
			return nil, fmt.Errorf("sync error: %w: %w", errs.ErrIO, err)
		}
		syncDur = clock.Elapsed(ss, r.clk.Now())
		r.log.Debug("sync complete", "duration", syncDur)
	}
	stop := r.clk.Now()

	if count == 0 {
		minWrite = 0
	}
	return &Result{
		Size:         len(buf),
		Count:        count,
		Bytes:        int64(len(buf)) * int64(count),
		Samples:      samples,
		Min:          minWrite,
		Max:          maxWrite,
		Duration:     clock.Elapsed(start, stop),
		SyncDuration: syncDur,
		Synced:       sync,
	}, nil
}

// checkSamples fails with ErrOutOfMemory when n samples cannot fit in the
// machine's memory. The runtime aborts the process on a failed heap
// allocation, so the bound is enforced up front.
func (r *Runner) checkSamples(n int) error {
	if n < 0 || uint64(n) > math.MaxInt64/sampleBytes {
		return fmt.Errorf("unable to alloc %d samples: %w", n, errs.ErrOutOfMemory)
	}
	if r.memLimit == nil {
		return nil
	}
	if need, limit := uint64(n)*sampleBytes, r.memLimit(); need > limit {
		return fmt.Errorf("unable to alloc %d samples (%d bytes, %d available): %w", n, need, limit, errs.ErrOutOfMemory)
	}
	return nil
}

func (r *Runner) allocSamples(n int) ([]time.Duration, error) {
	if err := r.checkSamples(n); err != nil {
		return nil, err
	}
	return make([]time.Duration, n), nil
}
