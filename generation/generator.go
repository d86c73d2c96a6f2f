// Package generation orchestrates one program generation pass: decoding a structured input, building its element
// tree through the adaptor, rendering it, and applying the debugging environment overrides.
package generation

import (
	"os"

	"github.com/crytic/solgen/generation/adaptor"
	"github.com/crytic/solgen/generation/config"
	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/generation/renderer"
	"github.com/crytic/solgen/logging"
	"github.com/crytic/solgen/utils/randomutils"
	"github.com/google/uuid"
)

// DumpPathEnvVar names the environment variable which, when set, receives every rendered source before it is
// handed to the harness.
const DumpPathEnvVar = "PROTO_FUZZER_DUMP_PATH"

// DebugFileEnvVar names the environment variable which, when set, replaces every rendered source with the
// contents of the named file. When both variables are set, the dump runs first and the load second.
const DebugFileEnvVar = "SOL_DEBUG_FILE"

// Generator represents a structured-input Solidity program generation provider.
type Generator struct {
	// config describes the configuration this generator operates under.
	config config.GenerationConfig

	// logger describes the Generator's log object, which can be disabled.
	logger *logging.Logger

	// Events describes the event system for the Generator.
	Events GeneratorEvents
}

// GeneratedProgram describes the output of one generation pass: the rendered source together with the metadata
// the harness needs to compile, deploy, and check the program against the oracle.
type GeneratedProgram struct {
	// RunID uniquely identifies this generation pass.
	RunID uuid.UUID

	// Source describes the rendered Solidity source.
	Source string

	// TestContractName describes the name of the concrete contract hosting the entry point.
	TestContractName string

	// TestMethodName describes the entry point's method signature name.
	TestMethodName string

	// LibraryName describes the library whose deployed address must be substituted before the test contract is
	// compiled. Empty when the program has no library.
	LibraryName string

	// ExpectedReturn describes the literal the chosen target function returns; the entry point itself always
	// normalizes to zero.
	ExpectedReturn string
}

// NewGenerator returns an instance of a new Generator provided a configuration, or an error if one is
// encountered while initializing it.
func NewGenerator(generationConfig config.GenerationConfig) (*Generator, error) {
	if err := generationConfig.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		config: generationConfig,
		logger: logging.GlobalLogger.NewSubLogger("module", "generation"),
	}, nil
}

// Config returns the configuration this generator operates under.
func (g *Generator) Config() config.GenerationConfig {
	return g.config
}

// Generate runs one generation pass over the provided structured-input bytes. It returns the generated program,
// or nil when the input was discarded: undecodable inputs and element trees which cannot host a valid test are
// not errors. Errors are reserved for environment failures such as an unwritable dump path.
func (g *Generator) Generate(data []byte) (*GeneratedProgram, error) {
	// Decode the structured input. Malformed inputs are discarded silently.
	program, err := input.DecodeProgram(data)
	if err != nil {
		g.discard("undecodable structured input")
		return nil, nil
	}

	// Build the element tree. All decisions not forced by the input structure draw from a provider seeded by
	// the input itself, so the pass is a pure function of the input bytes.
	randomProvider := randomutils.NewRandomProviderFromSeed(program.Seed)
	built, err := adaptor.BuildProgram(program, randomProvider)
	if err != nil {
		g.discard(err.Error())
		return nil, nil
	}
	if built == nil {
		g.discard("element tree cannot host a valid test")
		return nil, nil
	}

	source := renderer.RenderProgram(built)
	if source, err = g.applyDebugOverrides(source); err != nil {
		return nil, err
	}

	generated := &GeneratedProgram{
		RunID:            uuid.New(),
		Source:           source,
		TestContractName: built.TestContractName,
		TestMethodName:   adaptor.TestMethodName + "()",
		LibraryName:      built.LibraryName,
		ExpectedReturn:   built.ExpectedReturn,
	}
	g.logger.Debug("generated program", "contract", generated.TestContractName)
	g.Events.ProgramGenerated.Publish(ProgramGeneratedEvent{Generator: g, Program: generated})
	return generated, nil
}

// applyDebugOverrides applies the dump and load debugging aids to the rendered source: the source is written to
// the dump path first (configured or from the environment), then replaced by the debug file if one is named.
func (g *Generator) applyDebugOverrides(source string) (string, error) {
	dumpPath := g.config.DumpPath
	if envPath := os.Getenv(DumpPathEnvVar); envPath != "" {
		dumpPath = envPath
	}
	if dumpPath != "" {
		if err := os.WriteFile(dumpPath, []byte(source), 0644); err != nil {
			return "", err
		}
	}

	if debugFile := os.Getenv(DebugFileEnvVar); debugFile != "" {
		replacement, err := os.ReadFile(debugFile)
		if err != nil {
			return "", err
		}
		g.logger.Info("replaced rendered source with debug file", "path", debugFile)
		return string(replacement), nil
	}
	return source, nil
}

// discard logs and publishes the discarding of one structured input.
func (g *Generator) discard(reason string) {
	g.logger.Debug("discarded structured input:", reason)
	g.Events.ProgramDiscarded.Publish(ProgramDiscardedEvent{Generator: g, Reason: reason})
}
