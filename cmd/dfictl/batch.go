package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/celix-project/dynitype/internal/parser"
)

// newBatchCmd parses every file matching a glob and reports pass/fail
// plus the root type's size, formatted with go-humanize the same way
// the teacher formats byte counts for humans at a terminal.
func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <glob>",
		Short: "Parse every descriptor file matching a glob and report results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := doublestar.FilepathGlob(args[0])
			if err != nil {
				return fmt.Errorf("glob %q: %w", args[0], err)
			}
			if len(matches) == 0 {
				fmt.Println("no files matched")
				return nil
			}

			scope, err := openScope()
			if err != nil {
				return err
			}

			colorize := isatty.IsTerminal(os.Stdout.Fd())
			failures := 0
			for _, path := range matches {
				data, err := os.ReadFile(path)
				if err != nil {
					fmt.Printf("%s: read error: %v\n", path, err)
					failures++
					continue
				}
				n, err := parser.ParseStream(bytes.NewReader(data), parser.Options{Logger: log, ExtScope: scope})
				if err != nil {
					failures++
					if colorize {
						fmt.Printf("\x1b[31mFAIL\x1b[0m %s: %v\n", filepath.Base(path), err)
					} else {
						fmt.Printf("FAIL %s: %v\n", filepath.Base(path), err)
					}
					continue
				}
				fmt.Printf("OK   %s: %s\n", filepath.Base(path), humanize.Bytes(uint64(n.Size)))
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d files failed to parse", failures, len(matches))
			}
			return nil
		},
	}
}
