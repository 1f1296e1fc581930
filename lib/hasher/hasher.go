// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package hasher

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// DefaultName is the algorithm used when the caller does not ask for
// a specific one.
const DefaultName = "blake3"

// Algorithm describes one registered digest algorithm.
type Algorithm struct {
	// Name is the lowercase identifier accepted by --algorithm.
	Name string

	// Size is the digest length in bytes before hex encoding.
	Size int

	// New returns a fresh incremental hash state. Each hash job calls
	// this exactly once; states are never shared or reset.
	New func() hash.Hash
}

// registry holds the built-in algorithms, keyed by Name.
var registry = map[string]Algorithm{
	"blake3": {
		Name: "blake3",
		Size: 32,
		New:  func() hash.Hash { return blake3.New() },
	},
	"blake2b": {
		Name: "blake2b",
		Size: 32,
		New: func() hash.Hash {
			// blake2b.New256 only errors for invalid key lengths; an
			// unkeyed digest cannot fail.
			h, err := blake2b.New256(nil)
			if err != nil {
				panic("hasher: BLAKE2b initialization failed: " + err.Error())
			}
			return h
		},
	},
	"sha256": {
		Name: "sha256",
		Size: sha256.Size,
		New:  sha256.New,
	},
	"sha512": {
		Name: "sha512",
		Size: sha512.Size,
		New:  sha512.New,
	},
}

// Lookup resolves an algorithm name (case-insensitive). The empty
// string resolves to [DefaultName]. Unknown names return an error
// listing the valid choices.
func Lookup(name string) (Algorithm, error) {
	if name == "" {
		name = DefaultName
	}
	algorithm, ok := registry[strings.ToLower(name)]
	if !ok {
		return Algorithm{}, fmt.Errorf("unknown hash algorithm %q (valid: %s)",
			name, strings.Join(Names(), ", "))
	}
	return algorithm, nil
}

// Names returns the registered algorithm names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered algorithms sorted by name. Used by the
// "algorithms" subcommand.
func All() []Algorithm {
	algorithms := make([]Algorithm, 0, len(registry))
	for _, name := range Names() {
		algorithms = append(algorithms, registry[name])
	}
	return algorithms
}

// Format returns the lowercase hex encoding of a finalized digest,
// truncated to maxLength characters when maxLength > 0. Truncation is
// a display transform: a plain prefix cut of the hex string, applied
// after encoding, never a re-derivation of digest bytes.
func Format(digest []byte, maxLength int) string {
	text := hex.EncodeToString(digest)
	if maxLength > 0 && maxLength < len(text) {
		text = text[:maxLength]
	}
	return text
}
