package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/runson/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skips config loading in the root PersistentPreRunE.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}
