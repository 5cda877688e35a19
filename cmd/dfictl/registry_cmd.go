package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celix-project/dynitype/internal/registry"
)

func newRegistryCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "registry",
		Short: "Manage the persistent named-descriptor registry",
	}

	root.AddCommand(&cobra.Command{
		Use:   "put <name> <descriptor>",
		Short: "Register a descriptor under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := openScope()
			if err != nil {
				return err
			}
			if err := scope.Put(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("registered %q\n", args[0])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print the descriptor text registered under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := openScope()
			if err != nil {
				return err
			}
			text, err := scope.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every registered descriptor name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := openScope()
			if err != nil {
				return err
			}
			names, err := scope.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	})

	return root
}

func openScope() (*registry.Scope, error) {
	db, err := registry.Connect(cfg.RegistryDSN, cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "registry connect failed:", err)
		return nil, err
	}
	return registry.NewScope(db, nil, log), nil
}
