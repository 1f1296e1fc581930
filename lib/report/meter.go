// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// eraseLine clears the current terminal line after a carriage return.
const eraseLine = "\x1b[2K"

// meter is the live progress line: cumulative bytes, elapsed time,
// throughput, and the most recently completed path, rewritten in
// place on each result and cleared at the end of the run.
type meter struct {
	out   io.Writer
	width func() int
}

func (m *meter) update(totalBytes uint64, elapsed time.Duration, rate uint64, lastPath string) {
	line := fmt.Sprintf("%s | %s | %s/s | %s",
		humanize.Bytes(totalBytes), formatElapsed(elapsed), humanize.Bytes(rate), lastPath)
	if m.width != nil {
		if width := m.width(); width > 1 {
			// Leave one cell free so the cursor never wraps.
			line = ansi.Truncate(line, width-1, "…")
		}
	}
	fmt.Fprintf(m.out, "\r%s%s", eraseLine, line)
}

func (m *meter) clear() {
	fmt.Fprintf(m.out, "\r%s", eraseLine)
}
