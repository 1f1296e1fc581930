// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package hasher provides the digest algorithms treesum can compute
// and the textual formatting of their output.
//
// The rest of the program never names an algorithm: the pipeline
// consumes a constructor ([Algorithm.New]) returning a stdlib
// hash.Hash, and formats the finalized digest with [Format]. Algorithm
// selection happens once, at CLI startup, via [Lookup].
//
// BLAKE3 is the default. It is the fastest option on every platform
// we care about, and digest output here is a fingerprint, not a
// security boundary, so the choice is purely about throughput.
package hasher
