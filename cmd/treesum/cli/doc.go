// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the treesum
// binary: a command tree with pflag-based flag parsing, structured
// help with examples, and edit-distance suggestions for mistyped
// commands and flags.
package cli
