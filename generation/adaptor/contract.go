package adaptor

import (
	"strconv"

	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/utils/randomutils"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ResolvedContractFunction describes one contract-flavored function as seen from outside a contract after its
// override decisions have been applied: the representative declaration, whether it is still overridable, whether
// an implementation is reachable, and the literal that implementation returns.
type ResolvedContractFunction struct {
	// Function describes the representative declaration.
	Function *ContractFunction

	// Virtual is true if derived contracts may still override the function.
	Virtual bool

	// Implemented is true if a final implementation is reachable on this contract.
	Implemented bool

	// ReturnValue describes the literal the reachable implementation returns, when implemented.
	ReturnValue string
}

// ResolvedInterfaceFunction describes one interface-flavored function as seen from outside a contract: the
// declaration, the interfaces which originally declared it, and whether this contract (or one of its bases)
// implemented it.
type ResolvedInterfaceFunction struct {
	// Function describes the inherited interface declaration.
	Function InterfaceFunction

	// Interfaces describes the interfaces which originally declared the function.
	Interfaces []*Interface

	// Implemented is true if a final implementation is reachable on this contract.
	Implemented bool

	// ReturnValue describes the literal the reachable implementation returns, when implemented.
	ReturnValue string
}

// Contract describes a contract (abstract or concrete) with base elements, own functions, the override decisions
// it carries for inherited functions, and a registry of the publicly exposed functions a test can target.
type Contract struct {
	// name describes the contract name.
	name string

	// abstract is true if this contract is declared abstract.
	abstract bool

	// functions describes the contract's own function declarations, in declaration order.
	functions []*ContractFunction

	// bases describes the base elements inherited by this contract, in declaration order.
	bases []*BaseContract

	// contractOverrides describes the decisions this contract carries for functions inherited through base
	// contracts, in resolution order.
	contractOverrides []*ContractOverride

	// interfaceOverrides describes the decisions this contract carries for functions inherited from transitively
	// inherited interfaces, in resolution order.
	interfaceOverrides []*InterfaceFunctionOverride

	// resolvedContract describes the contract-flavored functions visible on this contract after resolution.
	resolvedContract []*ResolvedContractFunction

	// resolvedInterface describes the interface-flavored functions visible on this contract after resolution.
	resolvedInterface []*ResolvedInterfaceFunction

	// testableFunctions maps every concrete contract name to its registry of publicly exposed function names and
	// the literals they return.
	testableFunctions map[string]map[string]string

	// functionIndex describes the watermark used to mint fresh function names.
	functionIndex int

	// returnValue describes the watermark used to mint fresh return literals.
	returnValue int

	// lastBaseName describes the running base-name chain, adopted from each base subtree as it completes.
	lastBaseName string

	// valid is false once the input forces incompatible inheritance decisions; ValidTest reports it.
	valid bool

	// randomProvider offers the source of random data for override decisions and test selection.
	randomProvider *randomutils.RandomProvider
}

// NewContract builds a Contract from the provided structured input, under the given name, drawing random
// decisions from the given provider. Bases are built depth-first, then own functions are added, then override
// decisions are resolved, so all random draws occur in a fixed depth-first order.
func NewContract(spec *input.ContractSpec, name string, randomProvider *randomutils.RandomProvider) *Contract {
	contract := newContractShell(name, spec.Abstract, randomProvider)
	contract.addBases(spec)
	contract.addFunctions(spec)
	contract.addOverrides()
	contract.resolve()
	contract.buildRegistry()
	return contract
}

// WrapInterface builds a concrete Contract whose single base is the interface described by the provided input.
// It is used for inputs whose top-level element is an interface, so the entry point and oracle are always hosted
// by a concrete contract.
func WrapInterface(spec *input.InterfaceSpec, name string, randomProvider *randomutils.RandomProvider) *Contract {
	contract := newContractShell(name, false, randomProvider)
	base := NewInterface(spec, contract.newBaseName(), randomProvider)
	contract.bases = append(contract.bases, NewInterfaceBase(base))
	contract.lastBaseName = base.LastBaseName()
	contract.functionIndex = base.FunctionIndex()
	contract.addOverrides()
	contract.resolve()
	contract.buildRegistry()
	return contract
}

// newContractShell creates an empty contract with its watermarks initialized.
func newContractShell(name string, abstract bool, randomProvider *randomutils.RandomProvider) *Contract {
	return &Contract{
		name:              name,
		abstract:          abstract,
		testableFunctions: make(map[string]map[string]string),
		lastBaseName:      name,
		valid:             true,
		randomProvider:    randomProvider,
	}
}

// Name returns the contract name.
func (c *Contract) Name() string {
	return c.name
}

// Abstract returns true if this contract is declared abstract.
func (c *Contract) Abstract() bool {
	return c.abstract
}

// Bases returns the base elements in declaration order.
func (c *Contract) Bases() []*BaseContract {
	return c.bases
}

// Functions returns the contract's own function declarations in declaration order.
func (c *Contract) Functions() []*ContractFunction {
	return c.functions
}

// ContractOverrides returns the contract-over-contract override records in resolution order.
func (c *Contract) ContractOverrides() []*ContractOverride {
	return c.contractOverrides
}

// InterfaceOverrides returns the interface-over-contract override records in resolution order.
func (c *Contract) InterfaceOverrides() []*InterfaceFunctionOverride {
	return c.interfaceOverrides
}

// ResolvedContractFunctions returns the contract-flavored functions visible on this contract after resolution.
func (c *Contract) ResolvedContractFunctions() []*ResolvedContractFunction {
	return c.resolvedContract
}

// ResolvedInterfaceFunctions returns the interface-flavored functions visible on this contract after resolution.
func (c *Contract) ResolvedInterfaceFunctions() []*ResolvedInterfaceFunction {
	return c.resolvedInterface
}

// FunctionIndex returns the function-name watermark reached by this contract and its base subtree.
func (c *Contract) FunctionIndex() int {
	return c.functionIndex
}

// LastBaseName returns the base-name chain watermark reached by this contract's subtree.
func (c *Contract) LastBaseName() string {
	return c.lastBaseName
}

// addBases builds each base element depth-first and stores shared references in input order. Watermark adoption
// follows the same scheme as interfaces: type names keep lengthening along the walk, while sibling subtrees
// restart function naming at the shared watermark so identical declarations can form diamonds.
func (c *Contract) addBases(spec *input.ContractSpec) {
	for _, baseSpec := range spec.Bases {
		var base *BaseContract
		switch {
		case baseSpec.Contract != nil:
			base = NewContractBase(NewContract(baseSpec.Contract, c.newBaseName(), c.randomProvider))
		case baseSpec.Interface != nil:
			base = NewInterfaceBase(NewInterface(baseSpec.Interface, c.newBaseName(), c.randomProvider))
		default:
			continue
		}
		c.bases = append(c.bases, base)
		c.lastBaseName = base.LastBaseName()
		if base.FunctionIndex() > c.functionIndex {
			c.functionIndex = base.FunctionIndex()
		}

		// A base contract which was itself built from incompatible choices poisons the whole tree.
		if base.Kind() == BaseKindContract && !base.Contract().consistent() {
			c.valid = false
		}
	}
}

// addFunctions appends the contract's own functions with fresh names and return literals. A concrete contract
// may not declare bodyless functions, so the implemented bit is forced for it. Descriptors whose attribute
// combination is disallowed are skipped.
func (c *Contract) addFunctions(spec *input.ContractSpec) {
	for _, fnSpec := range spec.Functions {
		implemented := fnSpec.Implemented
		if !c.abstract {
			implemented = true
		}
		function := &ContractFunction{
			ContractName: c.name,
			Name:         c.newFunctionName(),
			Visibility:   Visibility(fnSpec.Visibility % 4),
			Mutability:   Mutability(fnSpec.Mutability % 3),
			Virtual:      fnSpec.Virtual,
			Implemented:  implemented,
		}
		if function.Disallowed() {
			continue
		}
		if function.Implemented {
			function.ReturnValue = c.newReturnValue()
		}
		c.functions = append(c.functions, function)
	}
}

// inheritedContractFunction accumulates the reachability state of one contract-flavored declaration across this
// contract's base contracts.
type inheritedContractFunction struct {
	function         *ContractFunction
	bases            []*Contract
	virtual          bool
	implementedCount int
}

// inheritedInterfaceFunction accumulates the reachability state of one interface-flavored declaration across this
// contract's base elements.
type inheritedInterfaceFunction struct {
	function         InterfaceFunction
	interfaces       []*Interface
	pathCount        int
	implementedCount int
}

// contractSideEntry summarizes the contract-flavored function surface under one name, used to detect and resolve
// collisions between contract-side and interface-side declarations.
type contractSideEntry struct {
	visibility  Visibility
	mutability  Mutability
	implemented bool
}

// addOverrides decides, for every function inherited from every base contract and every transitively inherited
// interface, the override record this contract carries for it. Contract-side decisions run first so the
// interface-side pass can see which names the contract surface already implements.
func (c *Contract) addOverrides() {
	orderedContract, inheritedContract := c.collectInheritedContractFunctions()
	c.addContractOverrides(orderedContract, inheritedContract)

	// Summarize the contract-side surface by name for collision handling in the interface-side pass.
	side := make(map[string]*contractSideEntry)
	for _, f := range c.functions {
		side[f.Name] = &contractSideEntry{visibility: f.Visibility, mutability: f.Mutability, implemented: f.Implemented}
	}
	for _, key := range orderedContract {
		e := inheritedContract[key]
		if _, ok := side[key.Name]; !ok {
			side[key.Name] = &contractSideEntry{visibility: key.Visibility, mutability: key.Mutability, implemented: e.implementedCount > 0}
		}
	}
	for _, record := range c.contractOverrides {
		if record.Implemented {
			side[record.Function.Name].implemented = true
		}
	}

	orderedInterface, inheritedInterface := c.collectInheritedInterfaceFunctions()
	c.addInterfaceOverrides(orderedInterface, inheritedInterface, side)
}

// collectInheritedContractFunctions collects, for every contract-flavored declaration reachable through this
// contract's base contracts, its reachability state, preserving first-seen order.
func (c *Contract) collectInheritedContractFunctions() ([]ContractFunctionKey, map[ContractFunctionKey]*inheritedContractFunction) {
	var ordered []ContractFunctionKey
	inherited := make(map[ContractFunctionKey]*inheritedContractFunction)
	for _, base := range c.bases {
		if base.Kind() != BaseKindContract {
			continue
		}
		for _, resolved := range base.Contract().ResolvedContractFunctions() {
			// Private declarations are not visible to derived contracts.
			if resolved.Function.Visibility == VisibilityPrivate {
				continue
			}
			key := resolved.Function.Key()
			entry, ok := inherited[key]
			if !ok {
				entry = &inheritedContractFunction{function: resolved.Function, virtual: true}
				inherited[key] = entry
				ordered = append(ordered, key)
			}
			entry.bases = append(entry.bases, base.Contract())
			entry.virtual = entry.virtual && resolved.Virtual
			if resolved.Implemented {
				entry.implementedCount++
			}
		}
	}
	return ordered, inherited
}

// addContractOverrides applies the contract-over-contract decision rule to every inherited contract declaration.
func (c *Contract) addContractOverrides(ordered []ContractFunctionKey, inherited map[ContractFunctionKey]*inheritedContractFunction) {
	derivedKind := DerivedKindContract
	if c.abstract {
		derivedKind = DerivedKindAbstractContract
	}

	for _, key := range ordered {
		entry := inherited[key]
		diamond := len(entry.bases) >= 2

		// A non-virtual declaration is finalized; it cannot be overridden. A concrete contract inheriting a
		// finalized declaration without an implementation can never satisfy its obligations.
		if !entry.virtual {
			if !c.abstract && entry.implementedCount == 0 {
				c.valid = false
			}
			continue
		}

		var implemented, explicit bool
		if !c.abstract {
			// A concrete contract must implement unless the linearization already yields exactly one
			// implementation; in that case re-overriding is optional, and an override must carry a body.
			if entry.implementedCount != 1 || diamond {
				implemented = true
			} else if c.coinToss() {
				implemented = true
			} else {
				continue
			}
		} else {
			implemented = c.coinToss()
			if !implemented {
				explicit = c.coinToss()
			}
			// A diamond must be resolved explicitly even when the coin tosses decline.
			if diamond && !implemented && !explicit {
				explicit = true
			}
			if !implemented && !explicit {
				continue
			}
		}

		// A re-declaration without a body must remain virtual so a later derivation can still implement it.
		virtualized := true
		if implemented {
			virtualized = c.coinToss()
		}
		returnValue := ""
		if implemented {
			returnValue = c.newReturnValue()
		}

		c.contractOverrides = append(c.contractOverrides, &ContractOverride{
			Bases:               entry.bases,
			Function:            entry.function,
			Derived:             c,
			DerivedKind:         derivedKind,
			Implemented:         implemented,
			Virtualized:         virtualized,
			ExplicitlyInherited: explicit,
			ReturnValue:         returnValue,
		})
	}
}

// collectInheritedInterfaceFunctions collects, for every interface-flavored declaration reachable through this
// contract's base elements, its reachability state, preserving first-seen order.
func (c *Contract) collectInheritedInterfaceFunctions() ([]InterfaceFunction, map[InterfaceFunction]*inheritedInterfaceFunction) {
	var ordered []InterfaceFunction
	inherited := make(map[InterfaceFunction]*inheritedInterfaceFunction)
	record := func(fn InterfaceFunction) *inheritedInterfaceFunction {
		entry, ok := inherited[fn]
		if !ok {
			entry = &inheritedInterfaceFunction{function: fn}
			inherited[fn] = entry
			ordered = append(ordered, fn)
		}
		return entry
	}

	for _, base := range c.bases {
		switch base.Kind() {
		case BaseKindInterface:
			iface := base.Interface()
			for _, fn := range iface.EffectiveFunctions() {
				entry := record(fn)
				entry.pathCount++
				entry.interfaces = mergeInterfaces(entry.interfaces, iface.Declarers(fn))
			}
		case BaseKindContract:
			for _, resolved := range base.Contract().ResolvedInterfaceFunctions() {
				entry := record(resolved.Function)
				entry.pathCount++
				entry.interfaces = mergeInterfaces(entry.interfaces, resolved.Interfaces)
				if resolved.Implemented {
					entry.implementedCount++
				}
			}
		}
	}
	return ordered, inherited
}

// addInterfaceOverrides applies the interface-over-contract decision rule to every inherited interface
// declaration. Interface declarations are implicitly virtual; a record may only drop virtual when the derived
// contract is concrete and the record carries the final implementation.
func (c *Contract) addInterfaceOverrides(ordered []InterfaceFunction, inherited map[InterfaceFunction]*inheritedInterfaceFunction, side map[string]*contractSideEntry) {
	derivedKind := DerivedKindContract
	if c.abstract {
		derivedKind = DerivedKindAbstractContract
	}

	for _, fn := range ordered {
		entry := inherited[fn]

		// A contract-side function with the same name either satisfies the interface declaration (compatible
		// signature with a reachable implementation) or makes the program unsatisfiable.
		if sideEntry, ok := side[fn.Name]; ok {
			if sideEntry.visibility.Exposed() && sideEntry.mutability == fn.Mutability && sideEntry.implemented {
				continue
			}
			c.valid = false
			continue
		}

		var implemented, explicit bool
		if !c.abstract {
			// A concrete contract must end up with exactly one implementation; re-overriding an inherited
			// implementation is optional but must then carry a body.
			if entry.implementedCount != 1 || entry.pathCount >= 2 {
				implemented = true
			} else if c.coinToss() {
				implemented = true
			} else {
				continue
			}
		} else {
			engaged := c.coinToss()
			if !engaged && entry.pathCount < 2 {
				continue
			}
			implemented = engaged && c.coinToss()
			explicit = !implemented
		}

		// Only a concrete contract's final implementation may leave the chain; everything else stays virtual.
		virtualized := true
		if !c.abstract && implemented {
			virtualized = c.coinToss()
		}
		returnValue := ""
		if implemented {
			returnValue = c.newReturnValue()
		}

		c.interfaceOverrides = append(c.interfaceOverrides, &InterfaceFunctionOverride{
			Interfaces:          entry.interfaces,
			Function:            fn,
			Derived:             c,
			DerivedKind:         derivedKind,
			Implemented:         implemented,
			Virtualized:         virtualized,
			ExplicitlyInherited: explicit,
			ReturnValue:         returnValue,
		})
	}
}

// resolve computes the contract's externally visible function surfaces by merging base surfaces, own functions,
// and the override records decided for this contract.
func (c *Contract) resolve() {
	// Contract-flavored surface.
	var orderedKeys []ContractFunctionKey
	contractSurface := make(map[ContractFunctionKey]*ResolvedContractFunction)
	for _, base := range c.bases {
		if base.Kind() != BaseKindContract {
			continue
		}
		for _, resolved := range base.Contract().ResolvedContractFunctions() {
			key := resolved.Function.Key()
			entry, ok := contractSurface[key]
			if !ok {
				clone := *resolved
				contractSurface[key] = &clone
				orderedKeys = append(orderedKeys, key)
				continue
			}
			entry.Virtual = entry.Virtual && resolved.Virtual
			if resolved.Implemented && !entry.Implemented {
				entry.Implemented = true
				entry.ReturnValue = resolved.ReturnValue
			}
		}
	}
	for _, function := range c.functions {
		key := function.Key()
		if _, ok := contractSurface[key]; !ok {
			orderedKeys = append(orderedKeys, key)
		}
		contractSurface[key] = &ResolvedContractFunction{
			Function:    function,
			Virtual:     function.Virtual,
			Implemented: function.Implemented,
			ReturnValue: function.ReturnValue,
		}
	}
	for _, record := range c.contractOverrides {
		entry := contractSurface[record.Function.Key()]
		if entry == nil {
			continue
		}
		if record.Implemented {
			entry.Implemented = true
			entry.ReturnValue = record.ReturnValue
			entry.Virtual = record.Virtualized
		} else {
			entry.Virtual = true
		}
	}
	c.resolvedContract = make([]*ResolvedContractFunction, 0, len(orderedKeys))
	for _, key := range orderedKeys {
		c.resolvedContract = append(c.resolvedContract, contractSurface[key])
	}

	// Interface-flavored surface.
	var orderedFns []InterfaceFunction
	interfaceSurface := make(map[InterfaceFunction]*ResolvedInterfaceFunction)
	for _, base := range c.bases {
		switch base.Kind() {
		case BaseKindInterface:
			iface := base.Interface()
			for _, fn := range iface.EffectiveFunctions() {
				entry, ok := interfaceSurface[fn]
				if !ok {
					entry = &ResolvedInterfaceFunction{Function: fn}
					interfaceSurface[fn] = entry
					orderedFns = append(orderedFns, fn)
				}
				entry.Interfaces = mergeInterfaces(entry.Interfaces, iface.Declarers(fn))
			}
		case BaseKindContract:
			for _, resolved := range base.Contract().ResolvedInterfaceFunctions() {
				entry, ok := interfaceSurface[resolved.Function]
				if !ok {
					clone := *resolved
					clone.Interfaces = mergeInterfaces(nil, resolved.Interfaces)
					interfaceSurface[resolved.Function] = &clone
					orderedFns = append(orderedFns, resolved.Function)
					continue
				}
				entry.Interfaces = mergeInterfaces(entry.Interfaces, resolved.Interfaces)
				if resolved.Implemented && !entry.Implemented {
					entry.Implemented = true
					entry.ReturnValue = resolved.ReturnValue
				}
			}
		}
	}
	for _, record := range c.interfaceOverrides {
		entry := interfaceSurface[record.Function]
		if entry == nil {
			continue
		}
		if record.Implemented {
			entry.Implemented = true
			entry.ReturnValue = record.ReturnValue
		}
	}
	// A compatible implemented contract-side function satisfies an interface declaration of the same name.
	for _, fn := range orderedFns {
		entry := interfaceSurface[fn]
		if entry.Implemented {
			continue
		}
		for _, visibility := range []Visibility{VisibilityExternal, VisibilityPublic} {
			if impl, ok := contractSurface[ContractFunctionKey{Name: fn.Name, Visibility: visibility, Mutability: fn.Mutability}]; ok && impl.Implemented {
				entry.Implemented = true
				entry.ReturnValue = impl.ReturnValue
				break
			}
		}
	}
	c.resolvedInterface = make([]*ResolvedInterfaceFunction, 0, len(orderedFns))
	for _, fn := range orderedFns {
		c.resolvedInterface = append(c.resolvedInterface, interfaceSurface[fn])
	}

	// Concrete-contract obligation: every inherited function must have exactly one reachable implementation.
	if !c.abstract {
		for _, resolved := range c.resolvedContract {
			if !resolved.Implemented {
				c.valid = false
			}
		}
		for _, resolved := range c.resolvedInterface {
			if !resolved.Implemented {
				c.valid = false
			}
		}
	}
}

// buildRegistry records the publicly exposed functions of this contract, when it is concrete and consistent,
// keyed by contract name for test selection.
func (c *Contract) buildRegistry() {
	if c.abstract || !c.valid {
		return
	}
	registry := make(map[string]string)
	for _, resolved := range c.resolvedContract {
		if resolved.Implemented && resolved.Function.Visibility.Exposed() {
			registry[resolved.Function.Name] = resolved.ReturnValue
		}
	}
	for _, resolved := range c.resolvedInterface {
		if !resolved.Implemented {
			continue
		}
		if _, ok := registry[resolved.Function.Name]; !ok {
			registry[resolved.Function.Name] = resolved.ReturnValue
		}
	}
	if len(registry) > 0 {
		c.testableFunctions[c.name] = registry
	}
}

// consistent returns true if no incompatible inheritance decision was forced while building this contract or its
// base subtree.
func (c *Contract) consistent() bool {
	return c.valid
}

// ValidTest returns true if this contract is concrete, consistent, and exposes at least one public function
// which can serve as a test target.
func (c *Contract) ValidTest() bool {
	return !c.abstract && c.valid && len(c.testableFunctions[c.name]) > 0
}

// ValidContractTest returns a pseudo-randomly chosen triple of concrete contract name, public function name, and
// the literal the function returns. Returns empty strings if no test candidate exists.
func (c *Contract) ValidContractTest() (string, string, string) {
	contractNames := maps.Keys(c.testableFunctions)
	if len(contractNames) == 0 {
		return "", "", ""
	}
	slices.Sort(contractNames)
	contractName := contractNames[c.randomProvider.Bounded(uint32(len(contractNames)))]

	registry := c.testableFunctions[contractName]
	functionNames := maps.Keys(registry)
	slices.Sort(functionNames)
	functionName := functionNames[c.randomProvider.Bounded(uint32(len(functionNames)))]
	return contractName, functionName, registry[functionName]
}

// PseudoRandomTest returns a pseudo-randomly chosen test target with the same guarantees as ValidContractTest.
func (c *Contract) PseudoRandomTest() (string, string, string) {
	return c.ValidContractTest()
}

// coinToss draws the next boolean decision from the contract's random provider.
func (c *Contract) coinToss() bool {
	return c.randomProvider.CoinToss()
}

// newFunctionName mints a fresh function name beyond the current watermark.
func (c *Contract) newFunctionName() string {
	name := "f" + strconv.Itoa(c.functionIndex)
	c.functionIndex++
	return name
}

// newBaseName mints a fresh base name by lengthening the running chain with "B".
func (c *Contract) newBaseName() string {
	c.lastBaseName += "B"
	return c.lastBaseName
}

// newReturnValue mints a fresh return literal.
func (c *Contract) newReturnValue() string {
	value := strconv.Itoa(c.returnValue)
	c.returnValue++
	return value
}

// mergeInterfaces appends the given interfaces to the list, deduplicating by name, which is unique across a
// program tree.
func mergeInterfaces(list []*Interface, add []*Interface) []*Interface {
	for _, iface := range add {
		present := false
		for _, existing := range list {
			if existing.Name() == iface.Name() {
				present = true
				break
			}
		}
		if !present {
			list = append(list, iface)
		}
	}
	return list
}
