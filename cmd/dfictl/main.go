// Command dfictl is a small CLI around the Type Engine: parse a
// descriptor, print its tree, diff two descriptors, batch-check a
// directory of them, and manage a persistent named-type registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celix-project/dynitype/internal/config"
	"github.com/celix-project/dynitype/internal/dfilog"
)

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
	log     dfilog.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "dfictl",
		Short: "Inspect and validate dynamic type descriptors",
		Long:  "dfictl parses, prints, diffs, and registers Type Engine descriptors.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debug {
				loaded.Debug = true
			}
			cfg = loaded
			if cfg.Debug {
				log = dfilog.NewStd(os.Stderr)
			} else {
				log = dfilog.Nop{}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a dfictl.yaml config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and verbose gorm output")

	root.AddCommand(
		newParseCmd(),
		newPrintCmd(),
		newDiffCmd(),
		newBatchCmd(),
		newRegistryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
