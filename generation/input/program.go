// Package input defines the structured program descriptions consumed by the generation adaptor. Inputs are
// tree-shaped messages produced by a structured fuzzing frontend and decoded from CBOR bytes. The adaptor depends
// only on the fields declared here; everything else about the frontend's schema is opaque to this module.
package input

import (
	"fmt"

	"github.com/fxamacker/cbor"
)

// ProgramVariant describes which top-level element a Program input requests.
type ProgramVariant int

const (
	// VariantLibrary indicates the input describes a single library.
	VariantLibrary ProgramVariant = iota
	// VariantContract indicates the input describes a contract and its transitive bases.
	VariantContract
	// VariantInterface indicates the input describes an interface and its transitive bases.
	VariantInterface
)

// Program describes one structured input: a seed for the random provider and exactly one top-level program
// element description.
type Program struct {
	// Seed describes the bytes used to seed the random provider for this input's generation pass.
	Seed []byte `cbor:"seed"`

	// Library describes a library input, if this input uses the library variant.
	Library *LibrarySpec `cbor:"library,omitempty"`

	// Contract describes a contract input, if this input uses the contract variant.
	Contract *ContractSpec `cbor:"contract,omitempty"`

	// Interface describes an interface input, if this input uses the interface variant.
	Interface *InterfaceSpec `cbor:"interface,omitempty"`
}

// LibrarySpec describes a flat container of library function descriptors.
type LibrarySpec struct {
	// Functions describes the function descriptors of this library, in input order.
	Functions []LibraryFunctionSpec `cbor:"functions"`
}

// LibraryFunctionSpec describes a single library function. Library functions are always concrete, never virtual,
// and restricted to public/internal visibility and pure/view mutability.
type LibraryFunctionSpec struct {
	// Internal is true if the function should be internal rather than public.
	Internal bool `cbor:"internal"`

	// View is true if the function should be view rather than pure.
	View bool `cbor:"view"`
}

// InterfaceSpec describes an interface with base interfaces and function descriptors.
type InterfaceSpec struct {
	// Bases describes the base interface descriptors of this interface, in input order.
	Bases []*InterfaceSpec `cbor:"bases"`

	// Functions describes the function descriptors of this interface, in input order.
	Functions []InterfaceFunctionSpec `cbor:"functions"`
}

// InterfaceFunctionSpec describes a single interface function declaration. Interface functions are external and
// virtual by construction, so only a mutability is carried.
type InterfaceFunctionSpec struct {
	// Mutability describes the requested state mutability. Values are reduced modulo the number of supported
	// mutabilities, so any byte is a valid descriptor.
	Mutability uint8 `cbor:"mutability"`
}

// ContractSpec describes a contract (abstract or concrete) with base elements and function descriptors.
type ContractSpec struct {
	// Abstract is true if this contract should be declared abstract.
	Abstract bool `cbor:"abstract"`

	// Bases describes the base element descriptors of this contract, in input order.
	Bases []BaseSpec `cbor:"bases"`

	// Functions describes the function descriptors of this contract, in input order.
	Functions []ContractFunctionSpec `cbor:"functions"`
}

// BaseSpec describes one base element of a contract: either an interface or a contract. When both fields are
// populated, the contract takes precedence; when neither is, the entry is ignored.
type BaseSpec struct {
	// Contract describes a contract base, if set.
	Contract *ContractSpec `cbor:"contract,omitempty"`

	// Interface describes an interface base, if set.
	Interface *InterfaceSpec `cbor:"interface,omitempty"`
}

// ContractFunctionSpec describes a single contract function declaration.
type ContractFunctionSpec struct {
	// Visibility describes the requested visibility. Values are reduced modulo the number of supported
	// visibilities, so any byte is a valid descriptor.
	Visibility uint8 `cbor:"visibility"`

	// Mutability describes the requested state mutability, reduced in the same manner as Visibility.
	Mutability uint8 `cbor:"mutability"`

	// Virtual is true if the function should be declared virtual.
	Virtual bool `cbor:"virtual"`

	// Implemented is true if the function should carry a body. Unimplemented functions in concrete contracts are
	// forced to be implemented by the adaptor.
	Implemented bool `cbor:"implemented"`
}

// Variant returns which top-level variant this input describes. If more than one variant field is populated, the
// precedence is library, contract, interface. An error is returned if no variant is populated.
func (p *Program) Variant() (ProgramVariant, error) {
	if p.Library != nil {
		return VariantLibrary, nil
	}
	if p.Contract != nil {
		return VariantContract, nil
	}
	if p.Interface != nil {
		return VariantInterface, nil
	}
	return 0, fmt.Errorf("structured input does not describe a library, contract, or interface")
}

// DecodeProgram decodes a structured input from the provided CBOR bytes. An error is returned if the bytes do not
// describe a well-formed Program message.
func DecodeProgram(data []byte) (*Program, error) {
	var program Program
	if err := cbor.Unmarshal(data, &program); err != nil {
		return nil, err
	}

	// Require a variant so downstream consumers never see an empty input.
	if _, err := program.Variant(); err != nil {
		return nil, err
	}
	return &program, nil
}

// Encode encodes the structured input back into CBOR bytes. The encoding round-trips through DecodeProgram.
func (p *Program) Encode() ([]byte, error) {
	return cbor.Marshal(p, cbor.CanonicalEncOptions())
}
