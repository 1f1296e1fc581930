// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package report is the pipeline's result sink: it renders one data
// line per hashed file, keeps the running totals, prints the final
// throughput summary, and optionally drives a single-line live
// progress meter on the diagnostic stream.
//
// The sink is driven synchronously by the scheduler's emission; it
// has no goroutines and no locking of its own. Data lines go to the
// primary output stream; everything else (meter, summary) goes to the
// diagnostic stream so that piping the output remains clean.
package report
