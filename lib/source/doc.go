// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package source provides the path producers that feed the hashing
// pipeline: an in-memory list, a concurrent recursive directory
// walker, and a line-delimited stream reader.
//
// All three implement [Source], a push-style producer: Produce calls
// emit once per discovered path, in discovery order, and returns when
// the sequence is exhausted or on the first error. The pipeline
// adapts Produce into a bounded channel, so a blocking emit is the
// backpressure mechanism: a producer that runs ahead of hashing
// simply suspends inside emit.
//
// Sources are single-use: a Source that has returned from Produce
// must not be reused.
package source
