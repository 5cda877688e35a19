package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celix-project/dynitype/internal/parser"
	"github.com/celix-project/dynitype/internal/printer"
)

func newPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print <file|->",
		Short: "Parse a descriptor file (or stdin) and dump its type tree",
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
			return printer.Print(os.Stdout, n)
		},
	}
}
