package adaptor

import (
	"strconv"

	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/utils/randomutils"
)

// Interface describes an interface with base interfaces, own function declarations, and the set of explicit
// re-declarations (overrides) of inherited declarations.
type Interface struct {
	// name describes the interface name.
	name string

	// functions describes the interface's own (truly new) function declarations, in declaration order.
	functions []*InterfaceFunction

	// bases describes the base interfaces inherited by this interface, in declaration order. Base references are
	// shared and observed, never mutated, by this interface.
	bases []*Interface

	// overrides describes the inherited declarations this interface explicitly re-declares, in resolution order.
	overrides []*InterfaceOverride

	// functionIndex describes the watermark used to mint fresh function names. It starts at the highest watermark
	// reached by any base subtree, so own declarations never collide with inherited names unintentionally.
	functionIndex int

	// lastBaseName describes the running base-name chain, adopted from each base subtree as it completes so that
	// type names are unique across the whole program.
	lastBaseName string

	// randomProvider offers the source of random data for override decisions.
	randomProvider *randomutils.RandomProvider
}

// InterfaceOverride describes one explicit re-declaration decision: an inherited declaration together with every
// base interface through which it is reachable from the re-declaring element. The base list drives the rendered
// override clause: one reachable base renders a bare override, two or more enumerate the bases.
type InterfaceOverride struct {
	// Function describes the re-declared declaration.
	Function InterfaceFunction

	// Bases describes the base interfaces through which the declaration is reachable, in base declaration order.
	Bases []*Interface
}

// NewInterface builds an Interface from the provided structured input, under the given name, drawing random
// decisions from the given provider. Bases are built depth-first before own functions, and override decisions are
// resolved last, so all random draws occur in a fixed depth-first order.
func NewInterface(spec *input.InterfaceSpec, name string, randomProvider *randomutils.RandomProvider) *Interface {
	iface := &Interface{
		name:           name,
		lastBaseName:   name,
		randomProvider: randomProvider,
	}
	iface.addBases(spec)
	iface.addFunctions(spec)
	iface.addOverrides()
	return iface
}

// Name returns the interface name.
func (i *Interface) Name() string {
	return i.name
}

// Bases returns the base interfaces in declaration order.
func (i *Interface) Bases() []*Interface {
	return i.bases
}

// Functions returns the interface's own function declarations in declaration order.
func (i *Interface) Functions() []*InterfaceFunction {
	return i.functions
}

// Overrides returns the interface's explicit re-declarations in resolution order.
func (i *Interface) Overrides() []*InterfaceOverride {
	return i.overrides
}

// FunctionIndex returns the function-name watermark reached by this interface and its base subtree.
func (i *Interface) FunctionIndex() int {
	return i.functionIndex
}

// LastBaseName returns the base-name chain watermark reached by this interface's subtree.
func (i *Interface) LastBaseName() string {
	return i.lastBaseName
}

// EffectiveFunctions returns the set of declarations visible on this interface: own declarations unioned with
// every (transitively) inherited declaration, deduplicated by (name, mutability). The order is deterministic:
// inherited declarations in base declaration order first, own declarations last.
func (i *Interface) EffectiveFunctions() []InterfaceFunction {
	var effective []InterfaceFunction
	seen := make(map[InterfaceFunction]struct{})
	appendFn := func(fn InterfaceFunction) {
		if _, ok := seen[fn]; ok {
			return
		}
		seen[fn] = struct{}{}
		effective = append(effective, fn)
	}

	for _, base := range i.bases {
		for _, fn := range base.EffectiveFunctions() {
			appendFn(fn)
		}
	}
	for _, fn := range i.functions {
		appendFn(*fn)
	}
	return effective
}

// Declarers returns the interfaces within this interface's subtree (itself included) which originally declare
// the given function as an own declaration, deduplicated by name in depth-first order. Explicit re-declarations
// do not count: the rendered override clause always names the original declarations.
func (i *Interface) Declarers(fn InterfaceFunction) []*Interface {
	var declarers []*Interface
	for _, base := range i.bases {
		declarers = mergeInterfaces(declarers, base.Declarers(fn))
	}
	for _, own := range i.functions {
		if *own == fn {
			declarers = mergeInterfaces(declarers, []*Interface{i})
			break
		}
	}
	return declarers
}

// addBases builds each base interface depth-first and stores shared references in input order. After each base
// subtree completes, its name and function-index watermarks are adopted: names continue lengthening from the
// subtree's chain, while sibling subtrees restart function naming at the same point, which is what makes two
// sibling bases declare identical (name, mutability) pairs and form diamonds.
func (i *Interface) addBases(spec *input.InterfaceSpec) {
	for _, baseSpec := range spec.Bases {
		if baseSpec == nil {
			continue
		}
		base := NewInterface(baseSpec, i.newBaseName(), i.randomProvider)
		i.bases = append(i.bases, base)
		i.lastBaseName = base.LastBaseName()
		if base.FunctionIndex() > i.functionIndex {
			i.functionIndex = base.FunctionIndex()
		}
	}
}

// addFunctions appends the interface's own declarations with fresh names. A descriptor which would introduce a
// name already visible with a different mutability is dropped.
func (i *Interface) addFunctions(spec *input.InterfaceSpec) {
	inherited := i.EffectiveFunctions()
	for _, fnSpec := range spec.Functions {
		function := &InterfaceFunction{
			Name:       i.newFunctionName(),
			Mutability: Mutability(fnSpec.Mutability % 3),
		}
		if interfaceNameClash(inherited, i.functions, function) {
			continue
		}
		i.functions = append(i.functions, function)
	}
}

// addOverrides walks every declaration visible through bases and decides, per declaration, whether this interface
// explicitly re-declares it. A declaration reachable through two or more bases must be re-declared with every
// reachable base enumerated; a declaration reachable through exactly one base is re-declared on a coin toss.
func (i *Interface) addOverrides() {
	ordered, reachable := i.reachableDeclarations()
	for _, fn := range ordered {
		bases := reachable[fn]
		if len(bases) < 2 && !i.coinToss() {
			continue
		}
		i.overrides = append(i.overrides, &InterfaceOverride{Function: fn, Bases: bases})
	}
}

// reachableDeclarations collects, for every declaration visible through this interface's bases, the list of bases
// through which it is reachable, preserving first-seen order.
func (i *Interface) reachableDeclarations() ([]InterfaceFunction, map[InterfaceFunction][]*Interface) {
	var ordered []InterfaceFunction
	reachable := make(map[InterfaceFunction][]*Interface)
	for _, base := range i.bases {
		for _, fn := range base.EffectiveFunctions() {
			if _, ok := reachable[fn]; !ok {
				ordered = append(ordered, fn)
			}
			reachable[fn] = append(reachable[fn], base)
		}
	}
	return ordered, reachable
}

// coinToss draws the next boolean decision from the interface's random provider.
func (i *Interface) coinToss() bool {
	return i.randomProvider.CoinToss()
}

// newFunctionName mints a fresh function name beyond the current watermark.
func (i *Interface) newFunctionName() string {
	name := "f" + strconv.Itoa(i.functionIndex)
	i.functionIndex++
	return name
}

// newBaseName mints a fresh base name by lengthening the running chain with "B".
func (i *Interface) newBaseName() string {
	i.lastBaseName += "B"
	return i.lastBaseName
}

// interfaceNameClash returns true if the candidate declaration's name is already visible among the inherited or
// own declarations with a different mutability.
func interfaceNameClash(inherited []InterfaceFunction, own []*InterfaceFunction, candidate *InterfaceFunction) bool {
	for _, fn := range inherited {
		if fn.Name == candidate.Name && fn.Mutability != candidate.Mutability {
			return true
		}
	}
	for _, fn := range own {
		if fn.Name == candidate.Name && fn.Mutability != candidate.Mutability {
			return true
		}
	}
	return false
}
