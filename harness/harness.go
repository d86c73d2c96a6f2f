package harness

import (
	"encoding/hex"
	"fmt"

	"github.com/crytic/solgen/compilation/types"
	"github.com/crytic/solgen/generation"
	"github.com/crytic/solgen/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// CompileFunc describes a function which compiles a generated source, substituting the provided library
// addresses, and returns the compilation artifacts. A stack-too-deep failure yields an empty compilation with no
// error; any other compiler failure is an error.
type CompileFunc func(source string, libraryAddresses map[string]common.Address) (*types.Compilation, error)

// CallResult describes the outcome of one message call against the execution backend.
type CallResult struct {
	// Output describes the returned data of the call.
	Output []byte

	// Reverted is true if the call reverted.
	Reverted bool
}

// ExecutionBackend describes an EVM-like execution engine the harness drives. The engine itself is an external
// collaborator; this module only depends on the two operations below.
type ExecutionBackend interface {
	// Deploy deploys the provided init bytecode and returns the address of the created contract.
	Deploy(bytecode []byte) (common.Address, error)

	// Call performs a message call against the contract at the provided address with the provided input data.
	Call(address common.Address, input []byte) (*CallResult, error)
}

// FindingKind describes the category of a harness finding.
type FindingKind string

const (
	// FindingCompileFailure describes a compiler failure other than stack-too-deep.
	FindingCompileFailure FindingKind = "compile failure"
	// FindingDeploymentFailure describes a failed contract or library deployment.
	FindingDeploymentFailure FindingKind = "deployment failure"
	// FindingExecutionReverted describes a reverted test execution.
	FindingExecutionReverted FindingKind = "execution reverted"
	// FindingUnexpectedOutput describes a successful test execution whose output does not match the oracle.
	FindingUnexpectedOutput FindingKind = "unexpected output"
)

// Finding describes one oracle violation discovered while running a generated program.
type Finding struct {
	// Kind describes the category of the finding.
	Kind FindingKind

	// Message describes the finding in detail.
	Message string

	// Source describes the generated source which triggered the finding.
	Source string
}

// Error returns the finding's message, implementing the error interface so findings can be surfaced directly.
func (f *Finding) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Harness drives the compile, deploy, and execute cycle for generated programs.
type Harness struct {
	// compile describes the compilation function the harness uses.
	compile CompileFunc

	// backend describes the execution engine the harness deploys to and calls into.
	backend ExecutionBackend

	// logger describes the harness's log object.
	logger *logging.Logger
}

// NewHarness returns a new Harness using the provided compile function and execution backend.
func NewHarness(compile CompileFunc, backend ExecutionBackend) *Harness {
	return &Harness{
		compile: compile,
		backend: backend,
		logger:  logging.GlobalLogger.NewSubLogger("module", "harness"),
	}
}

// Run compiles, deploys, and executes the provided generated program, then checks the oracle. The returned
// finding is nil when the program passes or is discarded (stack-too-deep compilations). Errors are reserved for
// backend infrastructure failures.
func (h *Harness) Run(program *generation.GeneratedProgram) (*Finding, error) {
	libraryAddresses := make(map[string]common.Address)

	// A program with a library deploys the library first, so its address can be substituted before the test
	// contract is linked.
	if program.LibraryName != "" {
		compilation, err := h.compile(program.Source, nil)
		if err != nil {
			return h.finding(program, FindingCompileFailure, err.Error()), nil
		}
		if len(compilation.Contracts) == 0 {
			return nil, nil
		}
		library, ok := compilation.Contracts[program.LibraryName]
		if !ok {
			return h.finding(program, FindingCompileFailure, fmt.Sprintf("library '%s' missing from compilation", program.LibraryName)), nil
		}
		address, err := h.backend.Deploy(library.InitBytecode)
		if err != nil {
			return h.finding(program, FindingDeploymentFailure, fmt.Sprintf("library deployment failed: %v", err)), nil
		}
		libraryAddresses[program.LibraryName] = address
	}

	// Compile the test contract with library addresses substituted.
	compilation, err := h.compile(program.Source, libraryAddresses)
	if err != nil {
		return h.finding(program, FindingCompileFailure, err.Error()), nil
	}
	if len(compilation.Contracts) == 0 {
		// Stack-too-deep compilations are silently discarded.
		return nil, nil
	}
	contract, ok := compilation.Contracts[program.TestContractName]
	if !ok {
		return h.finding(program, FindingCompileFailure, fmt.Sprintf("contract '%s' missing from compilation", program.TestContractName)), nil
	}

	// The entry point must appear in the compiler's method identifier map.
	identifier, ok := contract.MethodIdentifiers[program.TestMethodName]
	if !ok {
		return h.finding(program, FindingCompileFailure, fmt.Sprintf("method '%s' missing from identifier map", program.TestMethodName)), nil
	}
	selector, err := hex.DecodeString(identifier)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode method identifier '%s'", identifier)
	}

	// Deploy the test contract and invoke the entry point.
	address, err := h.backend.Deploy(contract.InitBytecode)
	if err != nil {
		return h.finding(program, FindingDeploymentFailure, fmt.Sprintf("contract deployment failed: %v", err)), nil
	}
	result, err := h.backend.Call(address, selector)
	if err != nil {
		return nil, errors.Wrap(err, "execution backend call failed")
	}
	if result.Reverted {
		return h.finding(program, FindingExecutionReverted, "test execution reverted"), nil
	}
	if !IsExpectedOutput(result.Output) {
		return h.finding(program, FindingUnexpectedOutput, fmt.Sprintf("test returned 0x%s", hex.EncodeToString(result.Output))), nil
	}
	return nil, nil
}

// finding constructs a Finding for the provided program and logs it.
func (h *Harness) finding(program *generation.GeneratedProgram, kind FindingKind, message string) *Finding {
	h.logger.Warn("finding:", string(kind), message)
	return &Finding{
		Kind:    kind,
		Message: message,
		Source:  program.Source,
	}
}
