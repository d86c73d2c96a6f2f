package renderer

import (
	"strings"
	"testing"

	"github.com/crytic/solgen/generation/adaptor"
	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/utils/randomutils"
	"github.com/stretchr/testify/assert"
)

// build is a test helper building a program from an input description with a zero-seeded provider.
func build(t *testing.T, program *input.Program) *adaptor.BuiltProgram {
	built, err := adaptor.BuildProgram(program, randomutils.NewRandomProviderFromSeed(nil))
	assert.NoError(t, err)
	assert.NotNil(t, built)
	return built
}

// TestRenderLibraryProgram will test the rendering of a library program: the library, its function, and the
// synthetic invoker whose entry point forwards the library call.
func TestRenderLibraryProgram(t *testing.T) {
	built := build(t, &input.Program{Library: &input.LibrarySpec{Functions: []input.LibraryFunctionSpec{{}}}})
	source := RenderProgram(built)

	assert.Contains(t, source, "pragma solidity >=0.0;")
	assert.Contains(t, source, "library LibB {")
	assert.Contains(t, source, "function f0() public pure returns (uint) {\n\t\treturn 0;\n\t}")
	assert.Contains(t, source, "contract C {")
	assert.Contains(t, source, "function test() public returns (uint) {\n\t\treturn LibB.f0();\n\t}")
}

// TestRenderLibraryProgramComparisonForm will test that a chosen library function with a non-zero literal is
// normalized to zero through a comparison.
func TestRenderLibraryProgramComparisonForm(t *testing.T) {
	// Two public functions; across seeds, whenever the chosen function returns a non-zero literal the entry
	// point must compare and normalize.
	for seed := byte(0); seed < 8; seed++ {
		built, err := adaptor.BuildProgram(
			&input.Program{Library: &input.LibrarySpec{Functions: []input.LibraryFunctionSpec{{}, {}}}},
			randomutils.NewRandomProviderFromSeed([]byte{seed}),
		)
		assert.NoError(t, err)
		source := RenderProgram(built)
		if built.ExpectedReturn == "0" {
			assert.Contains(t, source, "return LibB.f0();")
		} else {
			assert.Contains(t, source, "uint v = LibB.f1();")
			assert.Contains(t, source, "if (v != "+built.ExpectedReturn+")")
			assert.Contains(t, source, "return 0;")
		}
	}
}

// TestRenderSingleContract will test the rendering of a single concrete contract with one function and the
// synthesized entry point.
func TestRenderSingleContract(t *testing.T) {
	built := build(t, &input.Program{Contract: &input.ContractSpec{Functions: []input.ContractFunctionSpec{{Implemented: true}}}})
	source := RenderProgram(built)

	assert.Contains(t, source, "contract C {")
	assert.Contains(t, source, "function f0() public pure returns (uint) {\n\t\treturn 0;\n\t}")
	assert.Contains(t, source, "function test() public returns (uint) {\n\t\treturn f0();\n\t}")
	assert.NotContains(t, source, "override")
}

// TestRenderInterfaceDiamond will test that a diamond over interfaces renders with the override clause
// enumerating both declaring interfaces on every re-declaration.
func TestRenderInterfaceDiamond(t *testing.T) {
	oneFunction := &input.InterfaceSpec{Functions: []input.InterfaceFunctionSpec{{}}}
	built := build(t, &input.Program{Interface: &input.InterfaceSpec{Bases: []*input.InterfaceSpec{oneFunction, oneFunction}}})
	source := RenderProgram(built)

	// The base interfaces are rendered before the resolving interface and the implementing contract.
	assert.Less(t, strings.Index(source, "interface CBB {"), strings.Index(source, "interface CB is CBB, CBBB {"))
	assert.Contains(t, source, "interface CBBB {")
	assert.Contains(t, source, "function f0() external pure returns (uint);")

	// The resolving interface and the concrete contract both enumerate the declarers.
	assert.Contains(t, source, "override(CBB, CBBB)")
	assert.Contains(t, source, "contract C is CB {")
	assert.Contains(t, source, "function f0() external override(CBB, CBBB) pure")
}

// TestRenderAbstractBase will test that an abstract contract with an unimplemented virtual function renders as a
// bare declaration, and the deriving concrete contract renders an implementing override.
func TestRenderAbstractBase(t *testing.T) {
	built := build(t, &input.Program{Contract: &input.ContractSpec{
		Bases: []input.BaseSpec{{Contract: &input.ContractSpec{
			Abstract:  true,
			Functions: []input.ContractFunctionSpec{{Virtual: true, Implemented: false}},
		}}},
	}})
	source := RenderProgram(built)

	assert.Contains(t, source, "abstract contract CB {")
	assert.Contains(t, source, "function f0() public pure virtual returns (uint);")
	assert.Contains(t, source, "contract C is CB {")
	assert.Contains(t, source, "function f0() public override pure")
	assert.Contains(t, source, "\t\treturn f0();")
}

// TestRenderExternalTargetUsesThis will test that an external test target is invoked through `this`.
func TestRenderExternalTargetUsesThis(t *testing.T) {
	built := build(t, &input.Program{Contract: &input.ContractSpec{
		Functions: []input.ContractFunctionSpec{{Visibility: 3, Implemented: true}},
	}})
	source := RenderProgram(built)

	assert.Contains(t, source, "function f0() external pure returns (uint)")
	assert.Contains(t, source, "return this.f0();")
}

// TestRenderIsPure will test that rendering is a pure function of the element tree.
func TestRenderIsPure(t *testing.T) {
	built := build(t, &input.Program{Contract: &input.ContractSpec{
		Bases: []input.BaseSpec{{Contract: &input.ContractSpec{
			Abstract:  true,
			Functions: []input.ContractFunctionSpec{{Virtual: true, Implemented: false}, {Virtual: true, Implemented: true}},
		}}},
		Functions: []input.ContractFunctionSpec{{Implemented: true}},
	}})

	assert.Equal(t, RenderProgram(built), RenderProgram(built))
}
