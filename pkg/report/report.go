// Package report renders a benchmark result: the console summary, the raw
// per-write sample file and a JSON document.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/runningwild/writeperf/pkg/bench"
	"github.com/runningwild/writeperf/pkg/config"
)

// PrintBanner announces the run before the target is opened.
func PrintBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "writting %d x %d-byte to %s...\n", cfg.Count, cfg.Size, cfg.Target)
}

// Print writes the summary lines. A run that skipped the sync step reports a
// sync duration of zero.
func Print(w io.Writer, res *bench.Result) {
	fmt.Fprintf(w, "written: %d bytes\n", res.Bytes)
	fmt.Fprintf(w, "duration: %f seconds\n", res.Duration.Seconds())
	fmt.Fprintf(w, "sync-duration: %f seconds\n", res.SyncDuration.Seconds())
	fmt.Fprintf(w, "bitrate: %f MB/s\n", res.Throughput())
}

// PrintLatency writes the fastest and slowest single write.
func PrintLatency(w io.Writer, res *bench.Result) {
	fmt.Fprintf(w, "min-write: %f seconds\n", res.Min.Seconds())
	fmt.Fprintf(w, "max-write: %f seconds\n", res.Max.Seconds())
}

// WriteSamples writes one "<index>\t<seconds>" line per sample.
func WriteSamples(w io.Writer, samples []time.Duration) error {
	bw := bufio.NewWriter(w)
	for i, d := range samples {
		if _, err := fmt.Fprintf(bw, "%d\t%f\n", i, d.Seconds()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveSamples writes samples to a new file at path.
func SaveSamples(path string, samples []time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSamples(f, samples); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Document is the JSON form of a run. Durations are in seconds.
type Document struct {
	Target       string      `json:"target"`
	Mode         config.Mode `json:"mode"`
	Direct       bool        `json:"direct"`
	Size         int         `json:"size"`
	Count        int         `json:"count"`
	Bytes        int64       `json:"bytes"`
	Duration     float64     `json:"duration"`
	SyncDuration float64     `json:"sync_duration"`
	Synced       bool        `json:"synced"`
	Bitrate      float64     `json:"bitrate_mbps"`
	MinWrite     float64     `json:"min_write"`
	MaxWrite     float64     `json:"max_write"`
	Samples      []float64   `json:"samples,omitempty"`
}

// NewDocument builds the JSON form of res. Samples are included only when
// withSamples is set.
func NewDocument(cfg *config.Config, res *bench.Result, withSamples bool) Document {
	doc := Document{
		Target:       cfg.Target,
		Mode:         cfg.Mode,
		Direct:       cfg.Direct,
		Size:         res.Size,
		Count:        res.Count,
		Bytes:        res.Bytes,
		Duration:     res.Duration.Seconds(),
		SyncDuration: res.SyncDuration.Seconds(),
		Synced:       res.Synced,
		Bitrate:      res.Throughput(),
		MinWrite:     res.Min.Seconds(),
		MaxWrite:     res.Max.Seconds(),
	}
	if withSamples {
		doc.Samples = make([]float64, len(res.Samples))
		for i, d := range res.Samples {
			doc.Samples[i] = d.Seconds()
		}
	}
	return doc
}

// SaveJSON writes the JSON form of res, samples included, to path.
func SaveJSON(path string, cfg *config.Config, res *bench.Result) error {
	data, err := json.MarshalIndent(NewDocument(cfg, res, true), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}
