// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "sync"

// jobOutcome is what a job goroutine delivers on its window slot.
type jobOutcome struct {
	result Result
	err    error
}

// scheduleOrdered is the sliding window. Invariant: at most threads
// jobs are in flight, the window is FIFO, and the head is always
// awaited before a new job is admitted past it, which is exactly
// what makes emission order equal submission order.
func scheduleOrdered(conduit <-chan string, threads int, config Config, emit func(Result)) error {
	window := make([]chan jobOutcome, 0, threads)

	admit := func(path string) {
		slot := make(chan jobOutcome, 1)
		go func() {
			result, err := HashFile(path, config)
			slot <- jobOutcome{result, err}
		}()
		window = append(window, slot)
	}

	// Prime: fill the window to its full size before consuming any
	// result. A conduit that closes first just means fewer paths than
	// threads: normal exhaustion, straight to the drain.
	exhausted := false
	for len(window) < threads {
		path, ok := <-conduit
		if !ok {
			exhausted = true
			break
		}
		admit(path)
	}

	// Steady state: one result out, one job in, head first.
	if !exhausted {
		for path := range conduit {
			head := <-window[0]
			window = window[1:]
			if head.err != nil {
				awaitAll(window)
				return head.err
			}
			emit(head.result)
			admit(path)
		}
	}

	// Drain the remaining window strictly in admission order.
	for i, slot := range window {
		outcome := <-slot
		if outcome.err != nil {
			awaitAll(window[i+1:])
			return outcome.err
		}
		emit(outcome.result)
	}
	return nil
}

// awaitAll waits for in-flight jobs after an abort so every file
// handle is closed before Run returns. Results are discarded; the
// run already failed.
func awaitAll(window []chan jobOutcome) {
	for _, slot := range window {
		<-slot
	}
}

// scheduleUnordered is the completion-order variant: a fixed pool of
// worker goroutines sharing the conduit, results emitted as they
// arrive. Same in-flight and open-file bounds, no ordering guarantee.
func scheduleUnordered(conduit <-chan string, threads int, config Config, emit func(Result)) error {
	outcomes := make(chan jobOutcome)
	stop := make(chan struct{})

	var workers sync.WaitGroup
	for i := 0; i < threads; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for {
				select {
				case <-stop:
					return
				case path, ok := <-conduit:
					if !ok {
						return
					}
					result, err := HashFile(path, config)
					select {
					case outcomes <- jobOutcome{result, err}:
					case <-stop:
						return
					}
				}
			}
		}()
	}
	go func() {
		workers.Wait()
		close(outcomes)
	}()

	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = outcome.err
				close(stop)
			}
			continue
		}
		if firstErr == nil {
			emit(outcome.result)
		}
	}
	return firstErr
}
