// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the bounded-concurrency hashing core:
// a path source feeds a bounded conduit, a sliding-window scheduler
// keeps up to N hash jobs in flight, and completed results are
// emitted strictly in the order their paths were discovered.
//
// Ordering is enforced structurally, not by sorting: the window is a
// FIFO of in-flight jobs and the scheduler always awaits the head
// before admitting past it. Jobs may finish in any order internally;
// emission order never changes. The cost is that the window can be
// held up by a slow job among the oldest N; [Config.Unordered] trades
// the ordering guarantee away for completion-order emission when the
// caller prefers raw throughput.
//
// Resource bounds: at most N files are open at any instant (each job
// owns its file handle for its lifetime), and at most 3N paths are
// buffered between discovery and hashing, so neither a fast producer
// nor a slow consumer can grow memory without bound.
//
// Any job or source error is fatal to the run: in-flight jobs are
// awaited so their file handles close, the producer is released, and
// the first error is returned. Lines already emitted stay emitted:
// a failed run's output is a partial set, not a confirmed subset.
package pipeline
