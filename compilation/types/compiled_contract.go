// Package types defines the artifact model for compiled generated programs.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContractKind describes the kind of a compiled contract definition.
type ContractKind string

const (
	// ContractKindContract refers to a contract definition.
	ContractKindContract ContractKind = "contract"
	// ContractKindLibrary refers to a library definition.
	ContractKindLibrary ContractKind = "library"
	// ContractKindInterface refers to an interface definition.
	ContractKindInterface ContractKind = "interface"
)

// CompiledContract represents a single contract unit from a generated program compilation.
type CompiledContract struct {
	// Abi describes a contract's application binary interface, a structure used to describe information needed
	// to interact with the contract such as constructor and function definitions with input/output variable
	// information.
	Abi abi.ABI

	// InitBytecode describes the bytecode used to deploy the contract.
	InitBytecode []byte

	// RuntimeBytecode represents the bytecode expected once the contract has been successfully deployed.
	RuntimeBytecode []byte

	// MethodIdentifiers maps every external method signature (e.g. "test()") to its hex-encoded four byte
	// selector, as reported by the compiler.
	MethodIdentifiers map[string]string

	// Kind describes the kind of contract, i.e. contract, library, interface.
	Kind ContractKind
}

// Compilation represents the artifacts of one generated program compilation, keyed by contract name.
type Compilation struct {
	// Contracts maps every compiled contract definition's name to its artifacts.
	Contracts map[string]CompiledContract

	// Warnings describes the compiler's diagnostic output for the compilation.
	Warnings string
}

// NewCompilation returns a new, empty Compilation object.
func NewCompilation() *Compilation {
	return &Compilation{
		Contracts: make(map[string]CompiledContract),
	}
}

// ParseABIFromInterface takes a generic object that should represent an ABI and attempts to parse it into an
// abi.ABI object. The abi.ABI is returned if successful, or an error if one occurs.
func ParseABIFromInterface(i any) (*abi.ABI, error) {
	var (
		result abi.ABI
		err    error
	)

	// The ABI may be presented as an already-serialized string, or as a structure to re-serialize.
	if s, ok := i.(string); ok {
		result, err = ParseABIFromBytes([]byte(s))
	} else {
		var b []byte
		b, err = json.Marshal(i)
		if err != nil {
			return nil, err
		}
		result, err = ParseABIFromBytes(b)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseABIFromBytes parses a JSON-serialized ABI definition.
func ParseABIFromBytes(b []byte) (abi.ABI, error) {
	var parsed abi.ABI
	if err := parsed.UnmarshalJSON(b); err != nil {
		return abi.ABI{}, fmt.Errorf("could not parse ABI definition: %v", err)
	}
	return parsed, nil
}
