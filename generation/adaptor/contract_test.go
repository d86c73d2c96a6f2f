package adaptor

import (
	"testing"

	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/utils/randomutils"
	"github.com/stretchr/testify/assert"
)

// provider returns a zero-seeded random provider.
func provider() *randomutils.RandomProvider {
	return randomutils.NewRandomProviderFromSeed(nil)
}

// TestContractSingleFunction will test that a concrete contract with one public pure function is a valid test
// whose registry carries the function under its minted literal.
func TestContractSingleFunction(t *testing.T) {
	contract := NewContract(
		&input.ContractSpec{Functions: []input.ContractFunctionSpec{{Implemented: true}}},
		TopLevelContractName,
		provider(),
	)

	assert.False(t, contract.Abstract())
	assert.True(t, contract.ValidTest())
	assert.Len(t, contract.Functions(), 1)
	assert.Equal(t, "f0", contract.Functions()[0].Name)
	assert.Equal(t, "0", contract.Functions()[0].ReturnValue)

	contractName, functionName, expected := contract.ValidContractTest()
	assert.Equal(t, "C", contractName)
	assert.Equal(t, "f0", functionName)
	assert.Equal(t, "0", expected)
}

// TestConcreteContractImplementsAbstractBase will test that a concrete contract deriving an abstract contract
// with a virtual unimplemented function carries exactly one implementing override record for it.
func TestConcreteContractImplementsAbstractBase(t *testing.T) {
	contract := NewContract(
		&input.ContractSpec{
			Bases: []input.BaseSpec{{Contract: &input.ContractSpec{
				Abstract:  true,
				Functions: []input.ContractFunctionSpec{{Virtual: true, Implemented: false}},
			}}},
		},
		TopLevelContractName,
		provider(),
	)

	// The base is abstract and leaves f0 unimplemented.
	base := contract.Bases()[0].Contract()
	assert.True(t, base.Abstract())
	assert.False(t, base.Functions()[0].Implemented)

	// The derived contract is concrete and must implement.
	assert.False(t, contract.Abstract())
	assert.Len(t, contract.ContractOverrides(), 1)
	record := contract.ContractOverrides()[0]
	assert.True(t, record.Implemented)
	assert.Equal(t, "f0", record.Function.Name)
	assert.Equal(t, DerivedKindContract, record.DerivedKind)
	assert.True(t, contract.ValidTest())

	_, functionName, expected := contract.ValidContractTest()
	assert.Equal(t, "f0", functionName)
	assert.Equal(t, "0", expected)
}

// TestDisallowedFunctionIsDropped will test that a private virtual descriptor is skipped, and that a contract
// left without any public function is not a valid test.
func TestDisallowedFunctionIsDropped(t *testing.T) {
	contract := NewContract(
		&input.ContractSpec{Functions: []input.ContractFunctionSpec{
			{Visibility: 1, Virtual: true, Implemented: true}, // private virtual: disallowed
		}},
		TopLevelContractName,
		provider(),
	)

	assert.Empty(t, contract.Functions())
	assert.False(t, contract.ValidTest())
}

// TestNonVirtualBaseFunctionIsFinal will test that a non-virtual base implementation is inherited as-is: no
// override record is created and the base's literal is what the derived contract exposes.
func TestNonVirtualBaseFunctionIsFinal(t *testing.T) {
	contract := NewContract(
		&input.ContractSpec{
			Bases: []input.BaseSpec{{Contract: &input.ContractSpec{
				Functions: []input.ContractFunctionSpec{{Implemented: true}},
			}}},
		},
		TopLevelContractName,
		provider(),
	)

	// The finalized function produces no override record but remains reachable on the derived contract.
	assert.Empty(t, contract.ContractOverrides())
	assert.True(t, contract.ValidTest())
	contractName, functionName, expected := contract.ValidContractTest()
	assert.Equal(t, "C", contractName)
	assert.Equal(t, "f0", functionName)
	assert.Equal(t, "0", expected)
}

// TestContractDiamondOverContractBases will test that a declaration reachable through two base contracts is
// resolved by one override record enumerating both bases.
func TestContractDiamondOverContractBases(t *testing.T) {
	virtualFunction := func() *input.ContractSpec {
		return &input.ContractSpec{
			Abstract:  true,
			Functions: []input.ContractFunctionSpec{{Virtual: true, Implemented: false}},
		}
	}
	contract := NewContract(
		&input.ContractSpec{
			Bases: []input.BaseSpec{{Contract: virtualFunction()}, {Contract: virtualFunction()}},
		},
		TopLevelContractName,
		provider(),
	)

	// Sibling bases declare the same f0, so the derived contract carries one record listing both.
	assert.Len(t, contract.ContractOverrides(), 1)
	record := contract.ContractOverrides()[0]
	assert.True(t, record.Implemented)
	assert.Len(t, record.Bases, 2)
	assert.Equal(t, "CB", record.Bases[0].Name())
	assert.Equal(t, "CBB", record.Bases[1].Name())
	assert.True(t, contract.ValidTest())
}

// TestWrapInterfaceDiamond will test the interface diamond scenario end to end: a concrete contract implementing
// an interface which inherits the same declaration from two bases carries one implementing record enumerating
// the original declarers.
func TestWrapInterfaceDiamond(t *testing.T) {
	oneFunction := &input.InterfaceSpec{Functions: []input.InterfaceFunctionSpec{{}}}
	contract := WrapInterface(
		&input.InterfaceSpec{Bases: []*input.InterfaceSpec{oneFunction, oneFunction}},
		TopLevelContractName,
		provider(),
	)

	// The wrapped interface resolved the diamond itself.
	iface := contract.Bases()[0].Interface()
	assert.Equal(t, "CB", iface.Name())
	assert.Len(t, iface.Overrides(), 1)
	assert.Len(t, iface.Overrides()[0].Bases, 2)

	// The concrete wrapper must implement, and its record enumerates the declaring interfaces.
	assert.Len(t, contract.InterfaceOverrides(), 1)
	record := contract.InterfaceOverrides()[0]
	assert.True(t, record.Implemented)
	assert.Len(t, record.Interfaces, 2)
	assert.Equal(t, "CBB", record.Interfaces[0].Name())
	assert.Equal(t, "CBBB", record.Interfaces[1].Name())
	assert.True(t, contract.ValidTest())
}

// TestAbstractContractOverrideCounts will test the abstract-contract invariant: for every inherited function,
// the number of implementing records is zero or one, and bodyless re-declarations stay virtual.
func TestAbstractContractOverrideCounts(t *testing.T) {
	for seed := byte(0); seed < 16; seed++ {
		contract := NewContract(
			&input.ContractSpec{
				Abstract: true,
				Bases: []input.BaseSpec{{Contract: &input.ContractSpec{
					Abstract: true,
					Functions: []input.ContractFunctionSpec{
						{Virtual: true, Implemented: false},
						{Virtual: true, Implemented: true},
					},
				}}},
			},
			TopLevelContractName,
			randomutils.NewRandomProviderFromSeed([]byte{seed}),
		)

		implementedPerFunction := make(map[string]int)
		for _, record := range contract.ContractOverrides() {
			if record.Implemented {
				implementedPerFunction[record.Function.Name]++
				assert.NotEqual(t, "", record.ReturnValue)
			} else {
				// A re-declaration without a body must remain virtual.
				assert.True(t, record.ExplicitlyInherited)
				assert.True(t, record.Virtualized)
			}
			assert.Equal(t, DerivedKindAbstractContract, record.DerivedKind)
		}
		for _, count := range implementedPerFunction {
			assert.LessOrEqual(t, count, 1)
		}
	}
}

// TestConcreteContractObligation will test the concrete-contract invariant across seeds: every inherited
// abstract or unimplemented function resolves to exactly one reachable implementation.
func TestConcreteContractObligation(t *testing.T) {
	for seed := byte(0); seed < 16; seed++ {
		// The interface sits under the abstract base, so its declaration reaches the concrete contract through
		// the contract base's resolved surface.
		contract := NewContract(
			&input.ContractSpec{
				Bases: []input.BaseSpec{
					{Contract: &input.ContractSpec{
						Abstract: true,
						Bases:    []input.BaseSpec{{Interface: &input.InterfaceSpec{Functions: []input.InterfaceFunctionSpec{{Mutability: 1}}}}},
						Functions: []input.ContractFunctionSpec{
							{Virtual: true, Implemented: false},
							{Visibility: 3, Mutability: 1, Virtual: true, Implemented: true},
						},
					}},
				},
				Functions: []input.ContractFunctionSpec{{Implemented: true}},
			},
			TopLevelContractName,
			randomutils.NewRandomProviderFromSeed([]byte{seed}),
		)

		assert.True(t, contract.ValidTest())
		for _, resolved := range contract.ResolvedContractFunctions() {
			assert.True(t, resolved.Implemented)
		}
		for _, resolved := range contract.ResolvedInterfaceFunctions() {
			assert.True(t, resolved.Implemented)
		}
	}
}

// TestContractNameThreading will test that base names keep lengthening across sibling subtrees so type names
// never collide.
func TestContractNameThreading(t *testing.T) {
	empty := func() *input.ContractSpec { return &input.ContractSpec{Abstract: true} }
	nested := &input.ContractSpec{
		Bases: []input.BaseSpec{
			{Contract: &input.ContractSpec{Abstract: true, Bases: []input.BaseSpec{{Contract: empty()}, {Contract: empty()}}}},
			{Contract: empty()},
		},
		Functions: []input.ContractFunctionSpec{{Implemented: true}},
	}
	contract := NewContract(nested, TopLevelContractName, provider())

	// First base subtree: CB with bases CBB and CBBB; the second sibling resumes beyond the subtree's chain.
	first := contract.Bases()[0].Contract()
	assert.Equal(t, "CB", first.Name())
	assert.Equal(t, "CBB", first.Bases()[0].Name())
	assert.Equal(t, "CBBB", first.Bases()[1].Name())
	assert.Equal(t, "CBBBB", contract.Bases()[1].Name())

	// Collect every name in the tree and ensure uniqueness.
	names := map[string]int{}
	var walk func(c *Contract)
	walk = func(c *Contract) {
		names[c.Name()]++
		for _, base := range c.Bases() {
			walk(base.Contract())
		}
	}
	walk(contract)
	for name, count := range names {
		assert.Equal(t, 1, count, "type name %s occurs more than once", name)
	}
}

// TestContractDeterminism will test that two independent builds from the same input and seed produce equal
// decisions and test selections.
func TestContractDeterminism(t *testing.T) {
	spec := &input.ContractSpec{
		Bases: []input.BaseSpec{
			{Contract: &input.ContractSpec{
				Abstract:  true,
				Functions: []input.ContractFunctionSpec{{Virtual: true, Implemented: false}, {Virtual: true, Implemented: true}},
			}},
			{Interface: &input.InterfaceSpec{Functions: []input.InterfaceFunctionSpec{{}}}},
		},
		Functions: []input.ContractFunctionSpec{{Implemented: true}, {Visibility: 3, Implemented: true}},
	}
	seed := []byte{7, 7, 7}

	first := NewContract(spec, TopLevelContractName, randomutils.NewRandomProviderFromSeed(seed))
	second := NewContract(spec, TopLevelContractName, randomutils.NewRandomProviderFromSeed(seed))

	assert.Equal(t, len(first.ContractOverrides()), len(second.ContractOverrides()))
	for i := range first.ContractOverrides() {
		a, b := first.ContractOverrides()[i], second.ContractOverrides()[i]
		assert.Equal(t, a.Function.Name, b.Function.Name)
		assert.Equal(t, a.Implemented, b.Implemented)
		assert.Equal(t, a.Virtualized, b.Virtualized)
		assert.Equal(t, a.ExplicitlyInherited, b.ExplicitlyInherited)
		assert.Equal(t, a.ReturnValue, b.ReturnValue)
	}
	assert.Equal(t, len(first.InterfaceOverrides()), len(second.InterfaceOverrides()))

	firstContract, firstFunction, firstExpected := first.ValidContractTest()
	secondContract, secondFunction, secondExpected := second.ValidContractTest()
	assert.Equal(t, firstContract, secondContract)
	assert.Equal(t, firstFunction, secondFunction)
	assert.Equal(t, firstExpected, secondExpected)
}
