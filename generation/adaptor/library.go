package adaptor

import (
	"strconv"

	"github.com/crytic/solgen/generation/input"
	"github.com/crytic/solgen/utils/randomutils"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Library describes a flat container of library functions together with a registry of its publicly exposed
// functions and the literals their bodies return.
type Library struct {
	// name describes the library name.
	name string

	// functions describes the library's functions, in declaration order.
	functions []*LibraryFunction

	// publicFunctions maps every publicly exposed function name to the literal its body returns.
	publicFunctions map[string]string

	// functionIndex describes the watermark used to mint fresh function names.
	functionIndex int

	// returnValue describes the watermark used to mint fresh return literals.
	returnValue int

	// randomProvider offers the source of random data for test selection.
	randomProvider *randomutils.RandomProvider
}

// NewLibrary builds a Library from the provided structured input, under the given name, drawing random decisions
// from the given provider.
func NewLibrary(spec *input.LibrarySpec, name string, randomProvider *randomutils.RandomProvider) *Library {
	library := &Library{
		name:            name,
		publicFunctions: make(map[string]string),
		randomProvider:  randomProvider,
	}
	for i := range spec.Functions {
		library.addFunction(&spec.Functions[i])
	}
	return library
}

// Name returns the library name.
func (l *Library) Name() string {
	return l.name
}

// Functions returns the library's functions in declaration order.
func (l *Library) Functions() []*LibraryFunction {
	return l.functions
}

// addFunction appends a new library function built from the given descriptor, minting a fresh name and return
// literal for it. Publicly exposed functions are registered as test candidates.
func (l *Library) addFunction(spec *input.LibraryFunctionSpec) {
	visibility := VisibilityPublic
	if spec.Internal {
		visibility = VisibilityInternal
	}
	mutability := MutabilityPure
	if spec.View {
		mutability = MutabilityView
	}

	function := &LibraryFunction{
		LibraryName: l.name,
		Name:        l.newFunctionName(),
		Visibility:  visibility,
		Mutability:  mutability,
		ReturnValue: l.newReturnValue(),
	}
	l.functions = append(l.functions, function)

	if function.Visibility.Exposed() {
		l.publicFunctions[function.Name] = function.ReturnValue
	}
}

// ValidTest returns true if this library exposes at least one public function which can serve as a test target.
func (l *Library) ValidTest() bool {
	return len(l.publicFunctions) > 0
}

// PseudoRandomTest returns a pseudo-randomly chosen pair of public function name and the literal it returns.
// The choice is drawn from the library's random provider over the registry in sorted-name order, so a fixed
// provider state yields a fixed choice. Returns empty strings if no public function exists.
func (l *Library) PseudoRandomTest() (string, string) {
	if len(l.publicFunctions) == 0 {
		return "", ""
	}

	// Sort the registry keys so the modular choice below is stable across runs.
	names := maps.Keys(l.publicFunctions)
	slices.Sort(names)
	name := names[l.randomProvider.Bounded(uint32(len(names)))]
	return name, l.publicFunctions[name]
}

// newFunctionName mints a fresh function name.
func (l *Library) newFunctionName() string {
	name := "f" + strconv.Itoa(l.functionIndex)
	l.functionIndex++
	return name
}

// newReturnValue mints a fresh return literal.
func (l *Library) newReturnValue() string {
	value := strconv.Itoa(l.returnValue)
	l.returnValue++
	return value
}
