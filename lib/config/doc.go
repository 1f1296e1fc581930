// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads optional run defaults for treesum.
//
// Defaults are read from a single YAML file named by:
//   - the TREESUM_CONFIG environment variable, or
//   - the --config flag.
//
// There is no search path and no automatic discovery: either a file
// is named explicitly or the built-in defaults apply. Command-line
// flags always override file values.
package config
