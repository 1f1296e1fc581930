// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
)

// subdirBuffer is the per-subdirectory channel capacity. It only
// needs to absorb the head start a subtree walker gets before the
// parent reaches its position in the emission order; backpressure
// beyond that comes from the pipeline's conduit.
const subdirBuffer = 64

// Walker is a Source that recursively enumerates a directory tree.
//
// Emission order is exactly sequential depth-first order with
// per-directory lexicographic sorting: a directory's entries are
// processed in sorted name order, and a subdirectory's entire
// contents appear at the subdirectory's position. Only regular files
// are emitted. Symbolic links are never followed: a link to a
// directory is not descended and a link to a file is not hashed.
//
// Up to Parallelism directory reads run concurrently. Subtrees are
// walked by their own goroutines and their results spliced into the
// parent's ordered emission, so parallelism changes timing but never
// order. The concurrency token is held only across the ReadDir call,
// never across an emit, so a full conduit cannot deadlock the walk.
//
// Any traversal error (unreadable directory, failed entry inspection)
// aborts the walk. Partial hash sets are dangerous to mistake for
// complete ones, so the walker fails loudly rather than skipping.
type Walker struct {
	// Root is the directory to enumerate.
	Root string

	// Parallelism bounds concurrent directory reads. Zero or negative
	// means runtime.NumCPU().
	Parallelism int

	stopped atomic.Bool
}

// Produce walks the tree rooted at w.Root.
func (w *Walker) Produce(emit func(path string) error) error {
	parallelism := w.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	tokens := make(chan struct{}, parallelism)
	return w.walk(w.Root, tokens, emit)
}

// walk enumerates one directory and recurses. The emit callback is
// only invoked from the goroutine that called Produce (subtree
// goroutines emit into buffered splice channels instead), so emit
// needs no synchronization.
func (w *Walker) walk(dir string, tokens chan struct{}, emit func(string) error) error {
	if w.stopped.Load() {
		return nil
	}

	entries, err := w.readDir(dir, tokens)
	if err != nil {
		w.stopped.Store(true)
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	// Launch subtree walkers up front so their directory reads overlap
	// with this level's emission. Each subtree streams into its own
	// channel; the splice loop below drains each at the subdirectory's
	// sorted position, preserving sequential DFS order.
	type subtree struct {
		paths  chan string
		result chan error
	}
	subtrees := make(map[int]*subtree)
	for i, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := &subtree{
			paths:  make(chan string, subdirBuffer),
			result: make(chan error, 1),
		}
		subtrees[i] = sub
		go func(path string) {
			err := w.walk(path, tokens, func(p string) error {
				sub.paths <- p
				return nil
			})
			close(sub.paths)
			sub.result <- err
		}(filepath.Join(dir, entry.Name()))
	}

	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
			w.stopped.Store(true)
		}
	}

	for i, entry := range entries {
		if sub, ok := subtrees[i]; ok {
			// Even after a failure the subtree channels must be
			// drained so their goroutines can exit.
			for path := range sub.paths {
				if firstErr == nil {
					if err := emit(path); err != nil {
						fail(err)
					}
				}
			}
			if err := <-sub.result; err != nil {
				fail(err)
			}
			continue
		}

		if firstErr != nil {
			continue
		}
		// entry.Type() comes from the directory entry itself (lstat
		// semantics): a symlink reports ModeSymlink, not its target's
		// type, so links are excluded here without ever being followed.
		if entry.Type().IsRegular() {
			if err := emit(filepath.Join(dir, entry.Name())); err != nil {
				fail(err)
			}
		}
	}
	return firstErr
}

// readDir lists dir in lexicographic order, holding a concurrency
// token for the duration of the syscall only.
func (w *Walker) readDir(dir string, tokens chan struct{}) ([]os.DirEntry, error) {
	tokens <- struct{}{}
	defer func() { <-tokens }()
	return os.ReadDir(dir)
}
