package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celix-project/dynitype/internal/parser"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a descriptor file (or stdin) and report its root kind, size, and alignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDescriptorSource(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			scope, err := openScope()
			if err != nil {
				return err
			}

			n, err := parser.ParseStream(bytes.NewReader(data), parser.Options{Logger: log, ExtScope: scope})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("kind=%s descriptor=%q size=%d align=%d\n", n.EffectiveKind(), n.Descriptor, n.Size, n.Align)
			return nil
		},
	}
}
