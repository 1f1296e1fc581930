// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the treesum CLI command tree: the hash run
// itself on the root command, plus the version and algorithms
// subcommands.
package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/treesum-project/treesum/cmd/treesum/cli"
	"github.com/treesum-project/treesum/lib/hasher"
	"github.com/treesum-project/treesum/lib/version"
)

// Root returns the top-level treesum command.
func Root() *cli.Command {
	params := &runParams{}

	return &cli.Command{
		Name:    "treesum",
		Summary: "Hash lots of files fast, in parallel",
		Usage:   "treesum [flags] <file>... | <directory> | -",
		Description: `Compute content digests for files at full disk and CPU speed.

The input is one of: multiple file paths (hashed in argument order), a
single directory (every regular file under it, depth-first, symlinks
not followed), or "-" to read one path per line from stdin. Results
are printed one per line in discovery order; a summary with totals and
throughput goes to stderr.

Up to --threads files are hashed concurrently, which also bounds how
many files are open at once. Discovery runs ahead of hashing through a
bounded buffer, so memory stays flat no matter how many files there
are.`,
		Examples: []cli.Example{
			{
				Description: "Hash a directory tree",
				Command:     "treesum /data/models",
			},
			{
				Description: "Hash specific files with short digests",
				Command:     "treesum -d 16 release.tar.gz checksums.txt",
			},
			{
				Description: "Hash paths piped from find, md5sum-style output",
				Command:     "find . -name '*.bin' | treesum --compatible -",
			},
			{
				Description: "Quiet SHA-256 output for scripting",
				Command:     "treesum -q -a sha256 /var/backups",
			},
		},
		Flags: params.flags,
		Run: func(args []string) error {
			return runHash(params, args, os.Stdout, os.Stderr)
		},
		Subcommands: []*cli.Command{
			versionCommand(),
			algorithmsCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}

func algorithmsCommand() *cli.Command {
	return &cli.Command{
		Name:    "algorithms",
		Summary: "List available digest algorithms",
		Run: func(args []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			for _, algorithm := range hasher.All() {
				marker := ""
				if algorithm.Name == hasher.DefaultName {
					marker = " (default)"
				}
				fmt.Fprintf(tw, "%s\t%d-bit digest%s\n", algorithm.Name, algorithm.Size*8, marker)
			}
			return tw.Flush()
		},
	}
}
