// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"

	"github.com/treesum-project/treesum/lib/source"
)

// errAborted releases a blocked producer when the scheduler stops
// early. It never escapes Run: the job or source error that caused
// the abort is what callers see.
var errAborted = errors.New("pipeline aborted")

// Run drains src through the hashing pipeline, calling emit once per
// completed file. Emission order is src's discovery order unless
// config.Unordered is set. Returns the first fatal error (job or
// source), or nil after a complete run.
//
// emit is called from the scheduling goroutine only and must not
// block indefinitely.
func Run(src source.Source, config Config, emit func(Result)) error {
	threads := config.threads()
	conduit := make(chan string, conduitCapacity(threads))
	done := make(chan struct{})
	produceErr := make(chan error, 1)

	// Discovery runs concurrently with hashing. The bounded conduit
	// is the backpressure point: a producer that outruns hashing
	// blocks in emit until the scheduler catches up. The done channel
	// releases a blocked producer when the scheduler aborts.
	go func() {
		err := src.Produce(func(path string) error {
			select {
			case conduit <- path:
				return nil
			case <-done:
				return errAborted
			}
		})
		produceErr <- err
		close(conduit)
	}()

	var scheduleErr error
	if config.Unordered {
		scheduleErr = scheduleUnordered(conduit, threads, config, emit)
	} else {
		scheduleErr = scheduleOrdered(conduit, threads, config, emit)
	}
	close(done)

	// The producer has either finished or been released; collect its
	// verdict. A job failure takes precedence over the producer's
	// errAborted, which is just the echo of that abort.
	err := <-produceErr
	if scheduleErr != nil {
		drainConduit(conduit)
		return scheduleErr
	}
	if err != nil && !errors.Is(err, errAborted) {
		return err
	}
	return nil
}

// drainConduit empties any paths the producer buffered before it was
// released, so its close of the conduit is observed.
func drainConduit(conduit <-chan string) {
	for range conduit {
	}
}
