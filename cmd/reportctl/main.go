// Command reportctl is the operator and client tool for the reading diary:
// it applies migrations, generates and inspects period reports, prints the
// taxonomy, issues access tokens and follows the current report through
// the client cache.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "reportctl - reading diary reports toolkit",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newGenerateCmd(),
		newShowCmd(),
		newScheduleCmd(),
		newTaxonomyCmd(),
		newTokenCmd(),
		newWatchCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
