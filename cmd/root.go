package cmd

import (
	"github.com/crytic/solgen/logging"
	"github.com/spf13/cobra"
)

// rootCmd represents the root CLI command object which all other commands are attached to.
var rootCmd = &cobra.Command{
	Use:   "solgen",
	Short: "A structured-input Solidity program generator",
	Long:  "solgen deterministically turns structured fuzzer inputs into well-typed Solidity programs with a zero-returning test oracle",
}

// cmdLogger is the logger instance used by the cmd package.
var cmdLogger = logging.GlobalLogger.NewSubLogger("module", "cmd")

// Execute provides an exportable function to invoke the CLI.
// Returns an error if one was encountered.
func Execute() error {
	return rootCmd.Execute()
}
