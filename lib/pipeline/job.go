// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bufio"
	"fmt"
	"hash"
	"io"
	"os"
	"runtime"

	"github.com/treesum-project/treesum/lib/hasher"
)

// I/O sizing. The hash chunk is deliberately smaller than the reader
// buffer: the buffered reader amortizes syscalls while the chunk size
// keeps each digest update short.
const (
	readBufferSize = 8 * 1024
	hashChunkSize  = 1024
)

// bufferFactor scales hashing concurrency into conduit capacity,
// letting discovery run ahead of hashing without unbounded buffering.
const bufferFactor = 3

// Result is one completed hash job.
type Result struct {
	// Path is the file's path exactly as the source produced it.
	Path string

	// Digest is the lowercase hex digest, already truncated when a
	// maximum length was configured.
	Digest string

	// Bytes is the number of bytes read from the file.
	Bytes int64
}

// Config parameterizes a pipeline run. The zero value is not usable:
// NewHash is required.
type Config struct {
	// NewHash returns a fresh digest state per job. The pipeline is
	// generic over any incremental hash; it never names an algorithm.
	NewHash func() hash.Hash

	// Threads is the hashing concurrency N: the window size and the
	// open-file bound. Zero or negative means runtime.NumCPU().
	Threads int

	// DigestLength truncates the hex digest to this many characters
	// when positive. Zero means the full digest.
	DigestLength int

	// Unordered emits results in completion order instead of source
	// order. Faster when job durations vary wildly, but output order
	// is non-deterministic. Default (false) preserves source order.
	Unordered bool

	// Open opens a file for hashing. Nil means os.Open. Tests inject
	// instrumented or delaying openers here.
	Open func(path string) (io.ReadCloser, error)
}

func (c Config) threads() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return runtime.NumCPU()
}

func (c Config) openFile(path string) (io.ReadCloser, error) {
	if c.Open != nil {
		return c.Open(path)
	}
	return os.Open(path)
}

// conduitCapacity returns the path buffer size for a given window
// size: bufferFactor times the hashing concurrency.
func conduitCapacity(threads int) int {
	return threads * bufferFactor
}

// HashFile hashes a single file synchronously: the hash job contract
// without any pipeline machinery. The single-file fast path calls
// this directly; the scheduler runs it inside job goroutines.
func HashFile(path string, config Config) (Result, error) {
	file, err := config.openFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, readBufferSize)
	state := config.NewHash()
	chunk := make([]byte, hashChunkSize)
	var total int64

	for {
		n, err := reader.Read(chunk)
		if n > 0 {
			// hash.Hash.Write never returns an error.
			state.Write(chunk[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	return Result{
		Path:   path,
		Digest: hasher.Format(state.Sum(nil), config.DigestLength),
		Bytes:  total,
	}, nil
}
