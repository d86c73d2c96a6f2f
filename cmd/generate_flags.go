package cmd

import (
	"github.com/crytic/solgen/generation/config"
	"github.com/spf13/cobra"
)

// addGenerateFlags adds the flags allowed for the generate command.
func addGenerateFlags() error {
	// Get the default generation config for flag help strings.
	defaults := config.DefaultGenerationConfig()

	generateCmd.Flags().String("config", "", "path to a generation config file")
	generateCmd.Flags().String("dump-path", defaults.DumpPath,
		"path the rendered source is written to after generation")
	generateCmd.Flags().String("archive-dir", defaults.ArchiveDirectory,
		"directory holding the program archive database")
	generateCmd.Flags().String("solc", defaults.SolcPath,
		"solc binary used when compiling the generated program")
	generateCmd.Flags().Bool("compile", false,
		"compile the generated program and verify the entry point is exported")
	return nil
}

// updateGenerationConfigWithGenerateFlags updates the provided config with the flags set by the user.
func updateGenerationConfigWithGenerateFlags(cmd *cobra.Command, generationConfig *config.GenerationConfig) error {
	var err error
	if cmd.Flags().Changed("dump-path") {
		if generationConfig.DumpPath, err = cmd.Flags().GetString("dump-path"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("archive-dir") {
		if generationConfig.ArchiveDirectory, err = cmd.Flags().GetString("archive-dir"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("solc") {
		if generationConfig.SolcPath, err = cmd.Flags().GetString("solc"); err != nil {
			return err
		}
	}
	return nil
}
