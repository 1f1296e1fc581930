// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock time for testability.
//
// Production code injects [Real]; tests inject [NewFake] and advance
// it manually. The run summary's elapsed time and throughput are
// computed entirely through a Clock, so reporting tests are exact
// instead of sleeping and asserting on ranges.
package clock
