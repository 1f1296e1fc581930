// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Treesum hashes large numbers of files in parallel and prints one
// digest line per file in a deterministic order. Input is a list of
// files, a directory tree, or paths streamed on stdin; subcommands
// cover build information (version) and the available digest
// algorithms (algorithms).
package main
