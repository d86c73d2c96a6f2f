package cmd

import (
	"fmt"

	"github.com/crytic/solgen/generation/archive"
	"github.com/spf13/cobra"
)

// replayCmd represents the command provider for replaying archived programs.
var replayCmd = &cobra.Command{
	Use:           "replay <archive-dir> [run-id]",
	Short:         "Replays an archived generated program",
	Long:          "Prints an archived generated program's source by run ID, or lists every archived run when no ID is given",
	Args:          cobra.RangeArgs(1, 2),
	RunE:          cmdRunReplay,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add the replay command to the root command
	rootCmd.AddCommand(replayCmd)
}

// cmdRunReplay executes the CLI replay command.
func cmdRunReplay(cmd *cobra.Command, args []string) error {
	store, err := archive.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	// With no run ID, list every archived record.
	if len(args) == 1 {
		return store.Walk(func(record *archive.ProgramRecord) bool {
			fmt.Printf("%s\t%s\t%s\t%s\n", record.ID, record.CreatedAt.Format("2006-01-02 15:04:05"), record.TestContractName, record.TestMethodName)
			return true
		})
	}

	record, err := store.Get(args[1])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no archived program with run ID '%s'", args[1])
	}
	fmt.Print(record.Source)
	return nil
}
