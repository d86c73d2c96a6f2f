// Package adaptor builds an in-memory model of Solidity program elements (libraries, interfaces, contracts, their
// functions and override decisions) from a structured input. The model is immutable once built and is consumed by
// the renderer; it never touches a compiler or an execution engine itself.
package adaptor

// Visibility describes the visibility of a contract or library function.
type Visibility int

const (
	// VisibilityPublic describes a function callable internally and externally.
	VisibilityPublic Visibility = iota
	// VisibilityPrivate describes a function callable only from the declaring contract.
	VisibilityPrivate
	// VisibilityInternal describes a function callable from the declaring contract and its derived contracts.
	VisibilityInternal
	// VisibilityExternal describes a function callable only from outside the declaring contract.
	VisibilityExternal
)

// String returns the Solidity keyword for the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	case VisibilityInternal:
		return "internal"
	case VisibilityExternal:
		return "external"
	}
	return "public"
}

// Exposed returns true if the visibility makes a function part of a contract's external surface, meaning it can be
// registered as a test candidate.
func (v Visibility) Exposed() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// Mutability describes the state mutability of a function.
type Mutability int

const (
	// MutabilityPure describes a function which neither reads nor writes contract state.
	MutabilityPure Mutability = iota
	// MutabilityView describes a function which reads but does not write contract state.
	MutabilityView
	// MutabilityPayable describes a function which may receive value.
	MutabilityPayable
)

// String returns the Solidity keyword for the mutability.
func (m Mutability) String() string {
	switch m {
	case MutabilityPure:
		return "pure"
	case MutabilityView:
		return "view"
	case MutabilityPayable:
		return "payable"
	}
	return "pure"
}

// InterfaceFunction describes a single interface function declaration. Interface functions are external and
// virtual by construction and never carry a body, so the name and mutability fully identify a declaration.
// Two InterfaceFunction values with equal fields denote the same declaration, which is what makes
// diamond-reachable declarations resolvable by value comparison.
type InterfaceFunction struct {
	// Name describes the function name.
	Name string

	// Mutability describes the function's state mutability.
	Mutability Mutability
}

// ContractFunctionKey identifies a contract function declaration for override bookkeeping. Two declarations with
// equal keys denote the same function as far as inheritance resolution is concerned.
type ContractFunctionKey struct {
	// Name describes the function name.
	Name string

	// Visibility describes the function's visibility.
	Visibility Visibility

	// Mutability describes the function's state mutability.
	Mutability Mutability
}

// ContractFunction describes a single contract function declaration.
type ContractFunction struct {
	// ContractName describes the name of the contract which originally declared this function.
	ContractName string

	// Name describes the function name.
	Name string

	// Visibility describes the function's visibility.
	Visibility Visibility

	// Mutability describes the function's state mutability.
	Mutability Mutability

	// Virtual is true if the declaration is marked virtual, permitting derived contracts to override it.
	Virtual bool

	// Implemented is true if the declaration carries a body.
	Implemented bool

	// ReturnValue describes the unsigned integer literal the function body returns, when implemented.
	ReturnValue string
}

// Key returns the identity of this declaration for override bookkeeping.
func (f *ContractFunction) Key() ContractFunctionKey {
	return ContractFunctionKey{Name: f.Name, Visibility: f.Visibility, Mutability: f.Mutability}
}

// Disallowed returns true for any semantically impossible attribute combination. Disallowed functions are skipped
// at generation time and may never be emitted.
func (f *ContractFunction) Disallowed() bool {
	// Private functions can never be overridden, so marking them virtual is invalid.
	if f.Visibility == VisibilityPrivate && f.Virtual {
		return true
	}
	// A function without a body that cannot be overridden can never obtain an implementation.
	if !f.Implemented && !f.Virtual {
		return true
	}
	// Only functions on the external surface can receive value.
	if f.Mutability == MutabilityPayable && !f.Visibility.Exposed() {
		return true
	}
	return false
}

// LibraryFunction describes a single library function. Library functions are always concrete, never virtual,
// and restricted to public/internal visibility and pure/view mutability.
type LibraryFunction struct {
	// LibraryName describes the name of the declaring library.
	LibraryName string

	// Name describes the function name.
	Name string

	// Visibility describes the function's visibility, public or internal.
	Visibility Visibility

	// Mutability describes the function's state mutability, pure or view.
	Mutability Mutability

	// ReturnValue describes the unsigned integer literal the function body returns.
	ReturnValue string
}
