package cmd

import (
	"fmt"

	"github.com/crytic/solgen/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the command provider for version information.
var versionCmd = &cobra.Command{
	Use:           "version",
	Short:         "Prints version information",
	Long:          "Prints version information",
	Args:          cobra.NoArgs,
	RunE:          cmdRunVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add the version command to the root command
	rootCmd.AddCommand(versionCmd)
}

// cmdRunVersion executes the CLI version command.
func cmdRunVersion(cmd *cobra.Command, args []string) error {
	fmt.Println(version.Short())
	return nil
}
