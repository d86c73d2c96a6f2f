package adaptor

import (
	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/utils/randomutils"
)

// TopLevelContractName is the name given to the concrete contract hosting the test entry point.
const TopLevelContractName = "C"

// TopLevelLibraryName is the name given to the library when the input uses the library variant.
const TopLevelLibraryName = "LibB"

// TestMethodName is the name of the entry point the harness invokes on the top-level contract.
const TestMethodName = "test"

// BuiltProgram describes the adaptor's output for one structured input: exactly one top-level element (a library
// plus a synthetic invoker, or a concrete contract plus its transitive bases) together with the chosen test target.
type BuiltProgram struct {
	// Library describes the top-level library, when the input used the library variant. Nil otherwise.
	Library *Library

	// Contract describes the top-level concrete contract, when the input used the contract or interface variant.
	// Nil for the library variant, whose invoker contract is synthesized entirely by the renderer.
	Contract *Contract

	// TestContractName describes the name of the concrete contract hosting the test entry point.
	TestContractName string

	// TestFunctionName describes the name of the chosen public function the entry point invokes.
	TestFunctionName string

	// ExpectedReturn describes the literal the chosen function returns; the entry point compares against it and
	// normalizes the result to zero.
	ExpectedReturn string

	// LibraryName describes the library name, when the library variant was used, so the harness can substitute
	// the deployed library address before compiling the invoker. Empty otherwise.
	LibraryName string
}

// BuildProgram walks the provided structured input and builds its element tree, choosing the test target through
// the provided random provider. Returns nil (with no error) when the input's element tree cannot host a valid
// test and must be discarded; structural invalidity is never an error.
func BuildProgram(program *input.Program, randomProvider *randomutils.RandomProvider) (*BuiltProgram, error) {
	variant, err := program.Variant()
	if err != nil {
		return nil, err
	}

	switch variant {
	case input.VariantLibrary:
		library := NewLibrary(program.Library, TopLevelLibraryName, randomProvider)
		if !library.ValidTest() {
			return nil, nil
		}
		functionName, expectedReturn := library.PseudoRandomTest()
		return &BuiltProgram{
			Library:          library,
			TestContractName: TopLevelContractName,
			TestFunctionName: functionName,
			ExpectedReturn:   expectedReturn,
			LibraryName:      library.Name(),
		}, nil

	case input.VariantContract:
		contract := NewContract(program.Contract, TopLevelContractName, randomProvider)
		return buildContractProgram(contract)

	case input.VariantInterface:
		contract := WrapInterface(program.Interface, TopLevelContractName, randomProvider)
		return buildContractProgram(contract)
	}
	return nil, nil
}

// buildContractProgram selects the test target for a contract-rooted element tree, or reports a discard.
func buildContractProgram(contract *Contract) (*BuiltProgram, error) {
	if !contract.ValidTest() {
		return nil, nil
	}
	contractName, functionName, expectedReturn := contract.ValidContractTest()
	if contractName == "" {
		return nil, nil
	}
	return &BuiltProgram{
		Contract:         contract,
		TestContractName: contractName,
		TestFunctionName: functionName,
		ExpectedReturn:   expectedReturn,
	}, nil
}
