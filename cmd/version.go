package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"court-booking-tui/config"
)

func newVersionCmd(build buildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// Printing the version must not depend on a valid configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s", config.AppName, build.Version)
			if build.Commit != "none" && build.Commit != "" {
				fmt.Fprintf(out, " (%s)", build.Commit)
			}
			fmt.Fprintln(out)
		},
	}
}
