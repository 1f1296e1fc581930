// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Source produces a finite, order-preserving sequence of file paths.
type Source interface {
	// Produce calls emit for each path in discovery order. It returns
	// nil once the sequence is exhausted, the emit error unchanged if
	// emit fails, or the first discovery error. Produce never calls
	// emit again after emit has returned an error.
	Produce(emit func(path string) error) error
}

// List is a Source over paths known upfront, emitted in slice order.
// Used when the operator names multiple files on the command line.
type List []string

// Produce emits every path in order.
func (l List) Produce(emit func(path string) error) error {
	for _, path := range l {
		if err := emit(path); err != nil {
			return err
		}
	}
	return nil
}

// LineReader is a Source that reads one path per line from a byte
// stream, typically a pipe on stdin. Every line is taken verbatim as
// a path; no validation happens here, and an unusable path surfaces as
// an open error in the hash job that receives it. A trailing carriage
// return (CRLF input) is stripped.
type LineReader struct {
	r io.Reader
}

// NewLineReader returns a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r}
}

// maxLineLength bounds a single input line. Paths on Linux max out at
// 4 KiB; a megabyte leaves room for other platforms and still fails
// loudly on binary garbage piped in by mistake.
const maxLineLength = 1 << 20

// Produce emits one path per input line until end of stream.
func (l *LineReader) Produce(emit func(path string) error) error {
	scanner := bufio.NewScanner(l.r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	for scanner.Scan() {
		path := strings.TrimSuffix(scanner.Text(), "\r")
		if err := emit(path); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading path list: %w", err)
	}
	return nil
}
