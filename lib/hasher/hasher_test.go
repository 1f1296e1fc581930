// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package hasher

import (
	"crypto/sha256"
	"strings"
	"testing"
)

func TestLookupDefault(t *testing.T) {
	algorithm, err := Lookup("")
	if err != nil {
		t.Fatalf("Lookup(\"\"): %v", err)
	}
	if algorithm.Name != DefaultName {
		t.Errorf("default algorithm = %s, want %s", algorithm.Name, DefaultName)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	algorithm, err := Lookup("SHA256")
	if err != nil {
		t.Fatalf("Lookup(SHA256): %v", err)
	}
	if algorithm.Name != "sha256" {
		t.Errorf("Lookup(SHA256).Name = %s, want sha256", algorithm.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("md6")
	if err == nil {
		t.Fatal("Lookup(md6) should fail")
	}
	if !strings.Contains(err.Error(), "blake3") {
		t.Errorf("error should list valid algorithms, got: %v", err)
	}
}

func TestDigestSizes(t *testing.T) {
	for _, algorithm := range All() {
		state := algorithm.New()
		if _, err := state.Write([]byte("sizing probe")); err != nil {
			t.Fatalf("%s: Write: %v", algorithm.Name, err)
		}
		digest := state.Sum(nil)
		if len(digest) != algorithm.Size {
			t.Errorf("%s: digest is %d bytes, registry says %d",
				algorithm.Name, len(digest), algorithm.Size)
		}
	}
}

func TestSHA256KnownVector(t *testing.T) {
	algorithm, err := Lookup("sha256")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	state := algorithm.New()
	state.Write([]byte("hello"))
	got := Format(state.Sum(nil), 0)
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("sha256(hello) = %s, want %s", got, want)
	}
}

func TestIncrementalMatchesOneShot(t *testing.T) {
	// Feeding the state in pieces must produce the same digest as one
	// write. This is the property the chunked file reader relies on.
	content := []byte("incremental hashing must be chunk-size independent")

	for _, algorithm := range All() {
		whole := algorithm.New()
		whole.Write(content)

		pieces := algorithm.New()
		for i := 0; i < len(content); i += 7 {
			end := i + 7
			if end > len(content) {
				end = len(content)
			}
			pieces.Write(content[i:end])
		}

		if Format(whole.Sum(nil), 0) != Format(pieces.Sum(nil), 0) {
			t.Errorf("%s: chunked digest differs from one-shot", algorithm.Name)
		}
	}
}

func TestBlake3MatchesSHA256Independence(t *testing.T) {
	// Sanity check that the registry's sha256 is the stdlib's.
	content := []byte("registry wiring check")
	algorithm, _ := Lookup("sha256")
	state := algorithm.New()
	state.Write(content)
	want := sha256.Sum256(content)
	if Format(state.Sum(nil), 0) != Format(want[:], 0) {
		t.Error("registry sha256 differs from crypto/sha256")
	}
}

func TestFormatTruncation(t *testing.T) {
	digest := []byte{0xde, 0xad, 0xbe, 0xef}

	tests := []struct {
		maxLength int
		want      string
	}{
		{0, "deadbeef"},
		{8, "deadbeef"},
		{100, "deadbeef"},
		{4, "dead"},
		{1, "d"},
	}
	for _, test := range tests {
		if got := Format(digest, test.maxLength); got != test.want {
			t.Errorf("Format(maxLength=%d) = %q, want %q", test.maxLength, got, test.want)
		}
	}
}

func TestFormatTruncationIsPrefix(t *testing.T) {
	digest := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}
	full := Format(digest, 0)
	for k := 1; k <= len(full); k++ {
		if got := Format(digest, k); got != full[:k] {
			t.Errorf("Format(maxLength=%d) = %q, want prefix %q", k, got, full[:k])
		}
	}
}
