package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/crytic/solgen/cmd/exitcodes"
	"github.com/crytic/solgen/compilation/platforms"
	"github.com/crytic/solgen/generation"
	"github.com/crytic/solgen/generation/archive"
	"github.com/crytic/solgen/generation/config"
	"github.com/spf13/cobra"
)

// generateCmd represents the command provider for program generation.
var generateCmd = &cobra.Command{
	Use:           "generate <input-file>",
	Short:         "Generates a Solidity program from a structured input",
	Long:          "Generates a Solidity program with a zero-returning test oracle from a CBOR-encoded structured input file",
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunGenerate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add all the flags allowed for the generate command
	err := addGenerateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the generate command", err)
	}

	// Add the generate command and its associated flags to the root command
	rootCmd.AddCommand(generateCmd)
}

// cmdRunGenerate executes the CLI generate command.
func cmdRunGenerate(cmd *cobra.Command, args []string) error {
	// Load the base config, if one was provided, and apply command flags on top of it.
	generationConfig := config.DefaultGenerationConfig()
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if configPath != "" {
		if generationConfig, err = config.ReadGenerationConfigFromFile(configPath); err != nil {
			return err
		}
	}
	if err = updateGenerationConfigWithGenerateFlags(cmd, generationConfig); err != nil {
		return err
	}

	// Read the structured input.
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	// Create our generator and run one generation pass.
	generator, err := generation.NewGenerator(*generationConfig)
	if err != nil {
		return err
	}
	program, err := generator.Generate(data)
	if err != nil {
		return err
	}
	if program == nil {
		cmdLogger.Info("structured input discarded")
		return nil
	}

	// Print the rendered source; the test target metadata goes to the command logger.
	fmt.Print(program.Source)
	cmdLogger.Info("generated program", "contract", program.TestContractName, "method", program.TestMethodName)

	// Archive the program if an archive directory is configured.
	if generationConfig.ArchiveDirectory != "" {
		if err = archiveProgram(generationConfig.ArchiveDirectory, data, program); err != nil {
			return err
		}
	}

	// Optionally compile the program and verify the entry point appears in the method identifier map.
	compile, err := cmd.Flags().GetBool("compile")
	if err != nil {
		return err
	}
	if compile {
		if err = verifyCompiles(generationConfig, program); err != nil {
			return err
		}
	}
	return nil
}

// archiveProgram stores the generated program in the archive database under the configured directory.
func archiveProgram(directory string, inputData []byte, program *generation.GeneratedProgram) error {
	store, err := archive.Open(directory)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Put(&archive.ProgramRecord{
		ID:               program.RunID.String(),
		InputData:        inputData,
		Source:           program.Source,
		TestContractName: program.TestContractName,
		TestMethodName:   program.TestMethodName,
		LibraryName:      program.LibraryName,
		ExpectedReturn:   program.ExpectedReturn,
		CreatedAt:        time.Now().UTC(),
	})
}

// verifyCompiles compiles the generated program with solc and checks that the entry point is exported by the
// test contract. A compile failure or a missing entry point is surfaced as a finding exit code.
func verifyCompiles(generationConfig *config.GenerationConfig, program *generation.GeneratedProgram) error {
	platform := platforms.NewSolcPlatform(generationConfig.SolcPath, generationConfig.OptimizerEnabled)
	compilation, err := platform.CompileSource(program.Source, nil)
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeFinding)
	}
	if len(compilation.Contracts) == 0 {
		cmdLogger.Info("compilation discarded (stack too deep)")
		return nil
	}
	contract, ok := compilation.Contracts[program.TestContractName]
	if !ok {
		return exitcodes.NewErrorWithExitCode(
			fmt.Errorf("contract '%s' missing from compilation", program.TestContractName),
			exitcodes.ExitCodeFinding,
		)
	}
	if _, ok = contract.MethodIdentifiers[program.TestMethodName]; !ok {
		return exitcodes.NewErrorWithExitCode(
			fmt.Errorf("method '%s' missing from identifier map", program.TestMethodName),
			exitcodes.ExitCodeFinding,
		)
	}
	cmdLogger.Info("compilation succeeded", "contract", program.TestContractName)
	return nil
}
