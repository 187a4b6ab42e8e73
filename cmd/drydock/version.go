package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the drydock version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version of the drydock binary.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "drydock %s\n", Version)
	},
}
