package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/celix-project/dynitype/internal/parser"
	"github.com/celix-project/dynitype/internal/printer"
	"github.com/celix-project/dynitype/internal/typetree"
)

// newDiffCmd parses two descriptor files (or "-" for stdin, though
// only one of the pair may sensibly read stdin) and shows a unified
// diff of their printed trees, the same way the teacher's provider
// diffing leans on go-difflib for human-readable change summaries.
func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <fileA|-> <fileB|->",
		Short: "Show a unified diff between two descriptor files' printed trees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := openScope()
			if err != nil {
				return err
			}

			left, err := renderedTree(args[0], scope)
			if err != nil {
				return err
			}
			right, err := renderedTree(args[1], scope)
			if err != nil {
				return err
			}

			diff := difflib.UnifiedDiff{
				A:        difflib.SplitLines(left),
				B:        difflib.SplitLines(right),
				FromFile: args[0],
				ToFile:   args[1],
				Context:  3,
			}
			text, err := difflib.GetUnifiedDiffString(diff)
			if err != nil {
				return err
			}
			if text == "" {
				fmt.Println("no structural difference")
				return nil
			}
			fmt.Print(text)
			return nil
		},
	}
}

func renderedTree(path string, scope typetree.ReferenceScope) (string, error) {
	data, err := readDescriptorSource(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	n, err := parser.ParseStream(bytes.NewReader(data), parser.Options{Logger: log, ExtScope: scope})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var buf strings.Builder
	if err := printer.Print(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
