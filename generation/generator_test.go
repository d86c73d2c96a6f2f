package generation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/solgen/generation/config"
	"github.com/crytic/solgen/generation/input"
	"github.com/stretchr/testify/assert"
)

// newTestGenerator returns a generator with a default configuration.
func newTestGenerator(t *testing.T) *Generator {
	generator, err := NewGenerator(*config.DefaultGenerationConfig())
	assert.NoError(t, err)
	return generator
}

// encodeInput is a test helper encoding a structured input into CBOR bytes.
func encodeInput(t *testing.T, program *input.Program) []byte {
	data, err := program.Encode()
	assert.NoError(t, err)
	return data
}

// TestGenerateContractProgram will test one full generation pass over a contract input.
func TestGenerateContractProgram(t *testing.T) {
	generator := newTestGenerator(t)

	var generatedEvents int
	generator.Events.ProgramGenerated.Subscribe(func(event ProgramGeneratedEvent) {
		generatedEvents++
	})

	data := encodeInput(t, &input.Program{
		Seed:     []byte{1, 2, 3},
		Contract: &input.ContractSpec{Functions: []input.ContractFunctionSpec{{Implemented: true}}},
	})
	program, err := generator.Generate(data)
	assert.NoError(t, err)
	assert.NotNil(t, program)
	assert.Equal(t, "C", program.TestContractName)
	assert.Equal(t, "test()", program.TestMethodName)
	assert.Equal(t, "", program.LibraryName)
	assert.Contains(t, program.Source, "contract C {")
	assert.Equal(t, 1, generatedEvents)
}

// TestGenerateLibraryProgram will test that a library input reports its library name for address substitution.
func TestGenerateLibraryProgram(t *testing.T) {
	generator := newTestGenerator(t)

	data := encodeInput(t, &input.Program{
		Library: &input.LibrarySpec{Functions: []input.LibraryFunctionSpec{{}}},
	})
	program, err := generator.Generate(data)
	assert.NoError(t, err)
	assert.NotNil(t, program)
	assert.Equal(t, "LibB", program.LibraryName)
	assert.Contains(t, program.Source, "library LibB {")
}

// TestGenerateDiscards will test that undecodable inputs and trees without a valid test are discarded silently,
// publishing a discard event.
func TestGenerateDiscards(t *testing.T) {
	generator := newTestGenerator(t)

	var discardedEvents int
	generator.Events.ProgramDiscarded.Subscribe(func(event ProgramDiscardedEvent) {
		discardedEvents++
	})

	// Undecodable bytes.
	program, err := generator.Generate([]byte{0xFF, 0x13, 0x37})
	assert.NoError(t, err)
	assert.Nil(t, program)

	// A decodable input whose element tree has no public test target.
	data := encodeInput(t, &input.Program{
		Library: &input.LibrarySpec{Functions: []input.LibraryFunctionSpec{{Internal: true}}},
	})
	program, err = generator.Generate(data)
	assert.NoError(t, err)
	assert.Nil(t, program)

	assert.Equal(t, 2, discardedEvents)
}

// TestGenerateDeterminism will test that identical input bytes produce identical sources across independent
// generation passes.
func TestGenerateDeterminism(t *testing.T) {
	data := encodeInput(t, &input.Program{
		Seed: []byte{9, 8, 7, 6},
		Contract: &input.ContractSpec{
			Bases: []input.BaseSpec{{Contract: &input.ContractSpec{
				Abstract:  true,
				Functions: []input.ContractFunctionSpec{{Virtual: true, Implemented: false}, {Virtual: true, Implemented: true}},
			}}},
			Functions: []input.ContractFunctionSpec{{Implemented: true}},
		},
	})

	first, err := newTestGenerator(t).Generate(data)
	assert.NoError(t, err)
	second, err := newTestGenerator(t).Generate(data)
	assert.NoError(t, err)
	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, first.ExpectedReturn, second.ExpectedReturn)
}

// TestGenerateDumpPath will test that the rendered source is written to the dump path named by the environment.
func TestGenerateDumpPath(t *testing.T) {
	dumpPath := filepath.Join(t.TempDir(), "dump.sol")
	t.Setenv(DumpPathEnvVar, dumpPath)

	generator := newTestGenerator(t)
	data := encodeInput(t, &input.Program{
		Contract: &input.ContractSpec{Functions: []input.ContractFunctionSpec{{Implemented: true}}},
	})
	program, err := generator.Generate(data)
	assert.NoError(t, err)

	dumped, err := os.ReadFile(dumpPath)
	assert.NoError(t, err)
	assert.Equal(t, program.Source, string(dumped))
}

// TestGenerateDebugFile will test that the rendered source is replaced by the debug file named by the
// environment, with the dump still running first.
func TestGenerateDebugFile(t *testing.T) {
	dir := t.TempDir()
	dumpPath := filepath.Join(dir, "dump.sol")
	debugPath := filepath.Join(dir, "debug.sol")
	replacement := "contract C { function test() public returns (uint) { return 0; } }\n"
	assert.NoError(t, os.WriteFile(debugPath, []byte(replacement), 0644))
	t.Setenv(DumpPathEnvVar, dumpPath)
	t.Setenv(DebugFileEnvVar, debugPath)

	generator := newTestGenerator(t)
	data := encodeInput(t, &input.Program{
		Contract: &input.ContractSpec{Functions: []input.ContractFunctionSpec{{Implemented: true}}},
	})
	program, err := generator.Generate(data)
	assert.NoError(t, err)

	// The returned source is the debug file's contents, while the dump captured the rendered source.
	assert.Equal(t, replacement, program.Source)
	dumped, err := os.ReadFile(dumpPath)
	assert.NoError(t, err)
	assert.NotEqual(t, replacement, string(dumped))
	assert.Contains(t, string(dumped), "pragma solidity")
}
