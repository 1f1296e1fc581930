// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/treesum-project/treesum/lib/clock"
	"github.com/treesum-project/treesum/lib/pipeline"
)

// Default field separators. Compatible mode mimics the conventional
// system utilities (md5sum and friends): digest first, two spaces.
const (
	DefaultSeparator    = "\t"
	CompatibleSeparator = "  "
)

// Options configures a Reporter.
type Options struct {
	// Out receives one data line per hashed file.
	Out io.Writer

	// Diag receives the progress meter and the final summary.
	Diag io.Writer

	// Separator goes between the two fields of each data line.
	// Empty means DefaultSeparator.
	Separator string

	// DigestFirst swaps the field order to digest-then-path
	// (compatible mode). Default is path-then-digest.
	DigestFirst bool

	// Quiet suppresses the progress meter, statistics accounting,
	// and the final summary. Data lines are unaffected.
	Quiet bool

	// ShowProgress enables the live meter. The caller decides this
	// (typically: not quiet, and Diag is a terminal).
	ShowProgress bool

	// TerminalWidth returns the current meter width budget, or 0 for
	// no truncation. Nil means no truncation.
	TerminalWidth func() int

	// Clock drives elapsed-time accounting. Nil means clock.Real().
	Clock clock.Clock
}

// Reporter consumes pipeline results in emission order.
type Reporter struct {
	options Options
	clk     clock.Clock
	meter   *meter

	started    time.Time
	totalFiles uint64
	totalBytes uint64
}

// New returns a Reporter whose elapsed-time measurement starts now.
func New(options Options) *Reporter {
	if options.Separator == "" {
		options.Separator = DefaultSeparator
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	reporter := &Reporter{
		options: options,
		clk:     clk,
		started: clk.Now(),
	}
	if options.ShowProgress && !options.Quiet {
		reporter.meter = &meter{out: options.Diag, width: options.TerminalWidth}
	}
	return reporter
}

// Result renders one completed file and updates the running totals.
func (r *Reporter) Result(result pipeline.Result) {
	if r.options.DigestFirst {
		fmt.Fprintf(r.options.Out, "%s%s%s\n", result.Digest, r.options.Separator, result.Path)
	} else {
		fmt.Fprintf(r.options.Out, "%s%s%s\n", result.Path, r.options.Separator, result.Digest)
	}

	if r.options.Quiet {
		return
	}
	r.totalFiles++
	r.totalBytes += uint64(result.Bytes)

	if r.meter != nil {
		elapsed := r.clk.Since(r.started)
		r.meter.update(r.totalBytes, elapsed, throughput(r.totalBytes, elapsed), result.Path)
	}
}

// Finish clears the meter and, unless quiet, prints the run summary:
// file count, humanized byte total, elapsed time, and average
// throughput.
func (r *Reporter) Finish() {
	if r.meter != nil {
		r.meter.clear()
	}
	if r.options.Quiet {
		return
	}
	elapsed := r.clk.Since(r.started)
	fmt.Fprintf(r.options.Diag, "%d files (%s) hashed in %s (%s/s)\n",
		r.totalFiles,
		humanize.Bytes(r.totalBytes),
		formatElapsed(elapsed),
		humanize.Bytes(throughput(r.totalBytes, elapsed)))
}

// Abort clears the progress meter without printing a summary. Called
// when the run fails so the error message lands on a clean line.
func (r *Reporter) Abort() {
	if r.meter != nil {
		r.meter.clear()
	}
}

// Totals returns the accumulated file and byte counts.
func (r *Reporter) Totals() (files, bytes uint64) {
	return r.totalFiles, r.totalBytes
}

// throughput returns floored average bytes per second, zero when no
// measurable time has passed.
func throughput(bytes uint64, elapsed time.Duration) uint64 {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Floor(float64(bytes) / seconds))
}

// formatElapsed renders a wall-clock duration at the precision a run
// summary wants: milliseconds under a second, then seconds, then
// minute and hour breakdowns.
func formatElapsed(elapsed time.Duration) string {
	switch {
	case elapsed < time.Second:
		return fmt.Sprintf("%dms", elapsed.Milliseconds())
	case elapsed < time.Minute:
		return fmt.Sprintf("%ds", int(elapsed/time.Second))
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm %ds", int(elapsed/time.Minute), int((elapsed%time.Minute)/time.Second))
	default:
		return fmt.Sprintf("%dh %dm", int(elapsed/time.Hour), int((elapsed%time.Hour)/time.Minute))
	}
}
