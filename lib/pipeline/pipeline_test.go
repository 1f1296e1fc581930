// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/treesum-project/treesum/lib/source"
	"github.com/treesum-project/treesum/lib/testutil"
)

func sha256Config() Config {
	return Config{NewHash: sha256.New}
}

// writeFiles creates name -> content files in a temp dir and returns
// the dir and the absolute paths in map-insertion-independent sorted
// name order.
func writeFiles(t *testing.T, names []string, content func(name string) []byte) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], content(name), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return paths
}

func expectedDigest(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)
}

func TestRunDigestsAndOrder(t *testing.T) {
	names := []string{"small", "medium", "large", "empty"}
	paths := writeFiles(t, names, func(name string) []byte {
		return []byte(strings.Repeat(name, len(name)*100))
	})

	var results []Result
	err := Run(source.List(paths), sha256Config(), func(r Result) {
		results = append(results, r)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, result := range results {
		if result.Path != paths[i] {
			t.Errorf("result[%d].Path = %s, want %s (source order)", i, result.Path, paths[i])
		}
		if want := expectedDigest(t, paths[i]); result.Digest != want {
			t.Errorf("%s: digest = %s, want %s", paths[i], result.Digest, want)
		}
		info, _ := os.Stat(paths[i])
		if result.Bytes != info.Size() {
			t.Errorf("%s: bytes = %d, want %d", paths[i], result.Bytes, info.Size())
		}
	}
}

// delayingOpener opens files normally but sleeps first, by a per-path
// duration, inside the job goroutine. This permutes completion order
// without touching the scheduler.
type delayingOpener struct {
	delays map[string]time.Duration
}

func (d *delayingOpener) open(path string) (io.ReadCloser, error) {
	if delay, ok := d.delays[filepath.Base(path)]; ok {
		time.Sleep(delay)
	}
	return os.Open(path)
}

func TestRunOrderSurvivesCompletionPermutation(t *testing.T) {
	// The first-admitted job is the slowest; later jobs finish long
	// before it. Output must still be submission order.
	names := []string{"a", "b", "c", "d", "e", "f"}
	paths := writeFiles(t, names, func(name string) []byte { return []byte(name) })

	opener := &delayingOpener{delays: map[string]time.Duration{
		"a": 120 * time.Millisecond,
		"b": 60 * time.Millisecond,
		"c": 30 * time.Millisecond,
	}}
	config := sha256Config()
	config.Threads = 3
	config.Open = opener.open

	var order []string
	err := Run(source.List(paths), config, func(r Result) {
		order = append(order, filepath.Base(r.Path))
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := strings.Join(order, ""), strings.Join(names, ""); got != want {
		t.Errorf("emission order %q, want %q despite completion permutation", got, want)
	}
}

// countingOpener tracks the number of concurrently open files.
type countingOpener struct {
	mu      sync.Mutex
	open    int
	maxOpen int
}

type countedFile struct {
	*os.File
	opener *countingOpener
	closed atomic.Bool
}

func (c *countingOpener) Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.open++
	if c.open > c.maxOpen {
		c.maxOpen = c.open
	}
	c.mu.Unlock()
	return &countedFile{File: file, opener: c}, nil
}

func (f *countedFile) Close() error {
	if f.closed.CompareAndSwap(false, true) {
		f.opener.mu.Lock()
		f.opener.open--
		f.opener.mu.Unlock()
	}
	return f.File.Close()
}

func TestRunBoundsOpenFiles(t *testing.T) {
	const threads = 4
	names := make([]string, 40)
	for i := range names {
		names[i] = fmt.Sprintf("f%02d", i)
	}
	paths := writeFiles(t, names, func(name string) []byte {
		return []byte(strings.Repeat(name, 2000))
	})

	for _, unordered := range []bool{false, true} {
		opener := &countingOpener{}
		config := sha256Config()
		config.Threads = threads
		config.Unordered = unordered
		config.Open = opener.Open

		count := 0
		if err := Run(source.List(paths), config, func(Result) { count++ }); err != nil {
			t.Fatalf("Run(unordered=%v): %v", unordered, err)
		}
		if count != len(paths) {
			t.Errorf("unordered=%v: %d results, want %d", unordered, count, len(paths))
		}
		if opener.maxOpen > threads {
			t.Errorf("unordered=%v: %d files open concurrently, bound is %d",
				unordered, opener.maxOpen, threads)
		}
		if opener.open != 0 {
			t.Errorf("unordered=%v: %d files still open after run", unordered, opener.open)
		}
	}
}

func TestRunFewerPathsThanWindow(t *testing.T) {
	// Exhaustion during priming is not an error (the original
	// implementation conflated the two).
	paths := writeFiles(t, []string{"one", "two"}, func(name string) []byte { return []byte(name) })

	config := sha256Config()
	config.Threads = 16

	var results []Result
	if err := Run(source.List(paths), config, func(r Result) { results = append(results, r) }); err != nil {
		t.Fatalf("Run with 2 paths and window 16: %v", err)
	}
	if len(results) != 2 || results[0].Path != paths[0] || results[1].Path != paths[1] {
		t.Errorf("results %v, want both paths in order", results)
	}
}

func TestRunEmptySource(t *testing.T) {
	called := false
	if err := Run(source.List(nil), sha256Config(), func(Result) { called = true }); err != nil {
		t.Fatalf("Run over empty source: %v", err)
	}
	if called {
		t.Error("emit called for empty source")
	}
}

func TestRunJobFailureAborts(t *testing.T) {
	paths := writeFiles(t, []string{"a", "b", "c"}, func(name string) []byte { return []byte(name) })
	missing := filepath.Join(filepath.Dir(paths[0]), "missing")
	inputs := []string{paths[0], missing, paths[1], paths[2]}

	config := sha256Config()
	config.Threads = 2

	err := Run(source.List(inputs), config, func(Result) {})
	if err == nil {
		t.Fatal("Run should fail when a file cannot be opened")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error should name the failing path: %v", err)
	}
}

func TestRunJobFailureClosesFiles(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("f%02d", i)
	}
	paths := writeFiles(t, names, func(name string) []byte { return []byte(name) })
	inputs := append([]string{}, paths[:6]...)
	inputs = append(inputs, filepath.Join(filepath.Dir(paths[0]), "absent"))
	inputs = append(inputs, paths[6:]...)

	opener := &countingOpener{}
	config := sha256Config()
	config.Threads = 3
	config.Open = func(path string) (io.ReadCloser, error) { return opener.Open(path) }

	if err := Run(source.List(inputs), config, func(Result) {}); err == nil {
		t.Fatal("Run should fail")
	}
	if opener.open != 0 {
		t.Errorf("%d files still open after aborted run", opener.open)
	}
}

func TestRunAbortReleasesBlockedProducer(t *testing.T) {
	// The first job fails; the producer, blocked in emit on a full
	// conduit, must be released so Run can return. A deadlock here
	// shows up as the timeout firing.
	dir := t.TempDir()
	inputs := make([]string, 50)
	for i := range inputs {
		inputs[i] = filepath.Join(dir, "absent")
	}

	config := sha256Config()
	config.Threads = 1

	runErr := make(chan error, 1)
	go func() {
		runErr <- Run(source.List(inputs), config, func(Result) {})
	}()

	err := testutil.RequireReceive(t, runErr, 5*time.Second, "waiting for aborted run to return")
	if err == nil {
		t.Fatal("Run should fail when every file is missing")
	}
}

type erroringSource struct {
	emitFirst int
	err       error
}

func (s *erroringSource) Produce(emit func(string) error) error {
	for i := 0; i < s.emitFirst; i++ {
		if err := emit(fmt.Sprintf("path-%d", i)); err != nil {
			return err
		}
	}
	return s.err
}

func TestRunSourceFailureAborts(t *testing.T) {
	// Source errors after zero emissions: no jobs, just the error.
	wantErr := errors.New("traversal exploded")
	err := Run(&erroringSource{emitFirst: 0, err: wantErr}, sha256Config(), func(Result) {})
	if !errors.Is(err, wantErr) {
		t.Errorf("Run = %v, want source error", err)
	}
}

func TestRunUnorderedCompleteness(t *testing.T) {
	names := make([]string, 25)
	for i := range names {
		names[i] = fmt.Sprintf("u%02d", i)
	}
	paths := writeFiles(t, names, func(name string) []byte { return []byte(name + name) })

	config := sha256Config()
	config.Threads = 5
	config.Unordered = true

	seen := map[string]string{}
	if err := Run(source.List(paths), config, func(r Result) { seen[r.Path] = r.Digest }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != len(paths) {
		t.Fatalf("got %d results, want %d", len(seen), len(paths))
	}
	for _, path := range paths {
		if seen[path] != expectedDigest(t, path) {
			t.Errorf("%s: wrong digest in unordered mode", path)
		}
	}
}

func TestRunTruncatedDigests(t *testing.T) {
	paths := writeFiles(t, []string{"t"}, func(name string) []byte { return []byte("truncate me") })

	config := sha256Config()
	config.DigestLength = 8

	full := expectedDigest(t, paths[0])
	var got string
	if err := Run(source.List(paths), config, func(r Result) { got = r.Digest }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != full[:8] {
		t.Errorf("truncated digest = %s, want %s", got, full[:8])
	}
}

func TestRunBackpressure(t *testing.T) {
	// A source faster than hashing must block in emit rather than
	// buffer without bound: with threads=1 the conduit holds at most
	// 3 paths, so the producer can be at most window+conduit+1 ahead
	// of emission.
	names := make([]string, 30)
	for i := range names {
		names[i] = fmt.Sprintf("bp%02d", i)
	}
	paths := writeFiles(t, names, func(name string) []byte { return []byte(name) })

	var produced, emitted atomic.Int64
	src := countingSource{paths: paths, produced: &produced}

	opener := &delayingOpener{delays: map[string]time.Duration{}}
	for _, name := range names {
		opener.delays[name] = 2 * time.Millisecond
	}

	config := sha256Config()
	config.Threads = 1
	config.Open = opener.open

	maxAhead := int64(0)
	err := Run(src, config, func(Result) {
		ahead := produced.Load() - emitted.Load()
		if ahead > maxAhead {
			maxAhead = ahead
		}
		emitted.Add(1)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// window (1) + conduit (3) + one blocked in emit + the one being
	// reported = 6; anything near len(paths) means no backpressure.
	if maxAhead > 6 {
		t.Errorf("producer ran %d paths ahead of emission, want bounded by conduit", maxAhead)
	}
}

type countingSource struct {
	paths    []string
	produced *atomic.Int64
}

func (s countingSource) Produce(emit func(string) error) error {
	for _, path := range s.paths {
		if err := emit(path); err != nil {
			return err
		}
		s.produced.Add(1)
	}
	return nil
}
