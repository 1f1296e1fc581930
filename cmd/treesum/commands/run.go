// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/treesum-project/treesum/lib/config"
	"github.com/treesum-project/treesum/lib/hasher"
	"github.com/treesum-project/treesum/lib/pipeline"
	"github.com/treesum-project/treesum/lib/report"
	"github.com/treesum-project/treesum/lib/source"
)

// stdinMarker selects reading paths from stdin, one per line.
const stdinMarker = "-"

// runParams holds the root command's flag values. Flags that the user
// did not set fall back to the config file (then to built-in
// defaults), so every field records whether it was changed via the
// parsed flag set.
type runParams struct {
	configPath   string
	threads      int
	walkers      int
	digestLength int
	quiet        bool
	compatible   bool
	unordered    bool
	separator    string
	algorithm    string

	flagSet *pflag.FlagSet
}

func (p *runParams) flags() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("treesum", pflag.ContinueOnError)
	flagSet.StringVar(&p.configPath, "config", "", "defaults file (YAML; default $TREESUM_CONFIG)")
	flagSet.IntVarP(&p.threads, "threads", "t", 0, "hashing concurrency (default: CPU count)")
	flagSet.IntVarP(&p.walkers, "walkers", "w", 0, "directory-walking concurrency, for directory input (default: CPU count)")
	flagSet.IntVarP(&p.digestLength, "digest-length", "d", 0, "maximum digest length in characters (default: full digest)")
	flagSet.BoolVarP(&p.quiet, "quiet", "q", false, "suppress progress and summary (data lines unaffected)")
	flagSet.StringVarP(&p.separator, "separator", "s", "", `field separator; "\t" for tab, "\0" for null (default: tab, or two spaces with --compatible)`)
	flagSet.BoolVarP(&p.compatible, "compatible", "c", false, "digest-first output with two-space separator, like md5sum")
	flagSet.StringVarP(&p.algorithm, "algorithm", "a", "", fmt.Sprintf("digest algorithm (default %s; see 'treesum algorithms')", hasher.DefaultName))
	flagSet.BoolVar(&p.unordered, "unordered", false, "emit results in completion order (faster, non-deterministic order)")
	p.flagSet = flagSet
	return flagSet
}

// changed reports whether the user set the named flag explicitly.
func (p *runParams) changed(name string) bool {
	return p.flagSet != nil && p.flagSet.Changed(name)
}

// settings is the fully resolved run configuration: flags override the
// config file, which overrides built-in defaults.
type settings struct {
	algorithm    hasher.Algorithm
	threads      int
	walkers      int
	digestLength int
	quiet        bool
	compatible   bool
	unordered    bool
	separator    string
}

func resolveSettings(params *runParams) (settings, error) {
	var fileConfig *config.Config
	var err error
	if params.changed("config") {
		fileConfig, err = config.LoadFile(params.configPath)
	} else {
		fileConfig, err = config.Load()
	}
	if err != nil {
		return settings{}, err
	}

	resolved := settings{
		threads:      fileConfig.Threads,
		walkers:      fileConfig.Walkers,
		digestLength: fileConfig.DigestLength,
		quiet:        fileConfig.Quiet,
		compatible:   fileConfig.Compatible,
	}
	algorithmName := fileConfig.Algorithm

	if params.changed("threads") {
		resolved.threads = params.threads
	}
	if params.changed("walkers") {
		resolved.walkers = params.walkers
	}
	if params.changed("digest-length") {
		resolved.digestLength = params.digestLength
	}
	if params.changed("quiet") {
		resolved.quiet = params.quiet
	}
	if params.changed("compatible") {
		resolved.compatible = params.compatible
	}
	if params.changed("algorithm") {
		algorithmName = params.algorithm
	}
	resolved.unordered = params.unordered

	if resolved.threads < 0 {
		return settings{}, fmt.Errorf("--threads must not be negative (got %d)", resolved.threads)
	}
	if resolved.walkers < 0 {
		return settings{}, fmt.Errorf("--walkers must not be negative (got %d)", resolved.walkers)
	}
	if resolved.digestLength < 0 {
		return settings{}, fmt.Errorf("--digest-length must not be negative (got %d)", resolved.digestLength)
	}

	resolved.algorithm, err = hasher.Lookup(algorithmName)
	if err != nil {
		return settings{}, err
	}

	switch {
	case params.changed("separator"):
		resolved.separator = parseSeparator(params.separator)
	case fileConfig.Separator != "":
		resolved.separator = parseSeparator(fileConfig.Separator)
	case resolved.compatible:
		resolved.separator = report.CompatibleSeparator
	default:
		resolved.separator = report.DefaultSeparator
	}

	return resolved, nil
}

// parseSeparator recognizes the escape forms the original system
// utilities accept: a literal backslash-t for tab and backslash-0 for
// NUL. Anything else is taken verbatim.
func parseSeparator(raw string) string {
	switch raw {
	case `\t`:
		return "\t"
	case `\0`:
		return "\x00"
	default:
		return raw
	}
}

// runHash executes the root command: classify the input, build the
// matching path source, and drain it through the pipeline into the
// reporter. stdout receives data lines; stderr receives progress and
// the summary.
func runHash(params *runParams, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("input required: one or more files, a directory, or %q for stdin", stdinMarker)
	}

	resolved, err := resolveSettings(params)
	if err != nil {
		return err
	}

	pipelineConfig := pipeline.Config{
		NewHash:      resolved.algorithm.New,
		Threads:      resolved.threads,
		DigestLength: resolved.digestLength,
		Unordered:    resolved.unordered,
	}

	reporterOptions := report.Options{
		Out:         stdout,
		Diag:        stderr,
		Separator:   resolved.separator,
		DigestFirst: resolved.compatible,
		Quiet:       resolved.quiet,
	}
	// The live meter only makes sense on an interactive terminal; a
	// redirected stderr gets the summary line and nothing else.
	if file, ok := stderr.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		reporterOptions.ShowProgress = true
		reporterOptions.TerminalWidth = func() int {
			width, _, err := term.GetSize(fd)
			if err != nil {
				return 0
			}
			return width
		}
	}

	src, single, err := classifyInput(args)
	if err != nil {
		return err
	}

	reporter := report.New(reporterOptions)

	if single != "" {
		// One plain file: hash it synchronously, no pipeline machinery.
		result, err := pipeline.HashFile(single, pipelineConfig)
		if err != nil {
			return err
		}
		reporter.Result(result)
		reporter.Finish()
		return nil
	}

	if walker, ok := src.(*source.Walker); ok {
		walker.Parallelism = resolved.walkers
	}

	if err := pipeline.Run(src, pipelineConfig, reporter.Result); err != nil {
		reporter.Abort()
		return err
	}
	reporter.Finish()
	return nil
}

// classifyInput maps the positional arguments onto a path source, or
// onto the single-file fast path (single != ""). The argument forms
// are mutually exclusive by value: the stdin marker, one directory,
// one regular file, or a list of paths.
func classifyInput(args []string) (src source.Source, single string, err error) {
	if len(args) > 1 {
		return source.List(args), "", nil
	}

	input := args[0]
	if input == stdinMarker {
		return source.NewLineReader(os.Stdin), "", nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, "", fmt.Errorf("input %s is not a file, directory, or %q for stdin: %w",
			input, stdinMarker, err)
	}
	switch {
	case info.IsDir():
		return &source.Walker{Root: input}, "", nil
	case info.Mode().IsRegular():
		return nil, input, nil
	default:
		return nil, "", fmt.Errorf("input %s is not a regular file, directory, or %q for stdin",
			input, stdinMarker)
	}
}
