// Package platforms implements compiler invocation for generated programs.
package platforms

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/solgen/compilation/types"
	"github.com/crytic/solgen/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/compiler"
	"github.com/ethereum/go-ethereum/crypto"
)

// generatedSourceFileName is the file name under which generated sources are staged for compilation.
const generatedSourceFileName = "solgen.sol"

// SolcPlatform describes a compilation platform which compiles one generated source through the solc binary.
type SolcPlatform struct {
	// SolcPath describes the solc binary to invoke. If empty, "solc" is resolved from the environment.
	SolcPath string

	// OptimizerEnabled describes whether the optimizer is enabled for compilation.
	OptimizerEnabled bool
}

// NewSolcPlatform returns a new SolcPlatform with the provided settings.
func NewSolcPlatform(solcPath string, optimizerEnabled bool) *SolcPlatform {
	return &SolcPlatform{
		SolcPath:         solcPath,
		OptimizerEnabled: optimizerEnabled,
	}
}

// Platform returns the platform identifier.
func (s *SolcPlatform) Platform() string {
	return "solc"
}

// solcBinary returns the solc binary to invoke.
func (s *SolcPlatform) solcBinary() string {
	if s.SolcPath != "" {
		return s.SolcPath
	}
	return "solc"
}

// GetSystemSolcVersion obtains the version of the solc binary this platform invokes.
func (s *SolcPlatform) GetSystemSolcVersion() (*semver.Version, error) {
	// Run solc --version to obtain our compiler version.
	out, err := exec.Command(s.solcBinary(), "--version").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("error while executing solc:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	// Parse the compiler version out of the output
	exp := regexp.MustCompile(`\d+\.\d+\.\d+`)
	versionStr := exp.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New("could not parse solc version using 'solc --version'")
	}

	// Parse our semver string and return it
	return semver.NewVersion(versionStr)
}

// SolcOutputOptions determines what combined-json output options should be provided to solc given a
// semver.Version. The hashes output, which carries the method identifier map, only exists on solc >= 0.4.12.
func SolcOutputOptions(v *semver.Version) string {
	if v.Major() == 0 && (v.Minor() < 4 || (v.Minor() == 4 && v.Patch() < 12)) {
		return "abi,bin,bin-runtime"
	}
	return "abi,bin,bin-runtime,hashes"
}

// stackTooDeep returns true if the compiler output describes a stack-too-deep failure, which is swallowed rather
// than surfaced as a finding.
func stackTooDeep(output []byte) bool {
	return strings.Contains(strings.ToLower(string(output)), "stack too deep")
}

// CompileSource compiles the provided generated source and returns the compilation artifacts. Library addresses,
// when provided, are substituted through solc's --libraries option so the test contract links against deployed
// code. A stack-too-deep compiler failure yields an empty compilation and no error; any other compiler failure
// is returned as an error.
func (s *SolcPlatform) CompileSource(source string, libraryAddresses map[string]common.Address) (*types.Compilation, error) {
	// Obtain our solc version string
	v, err := s.GetSystemSolcVersion()
	if err != nil {
		return nil, err
	}

	// Stage the source in a scratch directory so solc's combined-json output uses a stable source path.
	dir, err := os.MkdirTemp("", "solgen-solc")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	sourcePath := filepath.Join(dir, generatedSourceFileName)
	if err = os.WriteFile(sourcePath, []byte(source), 0600); err != nil {
		return nil, err
	}

	// Create our command
	args := []string{sourcePath, "--combined-json", SolcOutputOptions(v)}
	if s.OptimizerEnabled {
		args = append(args, "--optimize")
	}
	if len(libraryAddresses) > 0 {
		var links []string
		for name, address := range libraryAddresses {
			links = append(links, fmt.Sprintf("%s:%s:%s", sourcePath, name, address.Hex()))
		}
		args = append(args, "--libraries", strings.Join(links, ","))
	}
	cmd := exec.Command(s.solcBinary(), args...)
	cmdStdout, cmdStderr, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		// Stack-too-deep errors are expected for deeply generated programs and treated as empty output.
		if stackTooDeep(cmdCombined) {
			return types.NewCompilation(), nil
		}
		return nil, fmt.Errorf("error while executing solc:\n%s\n\nCommand Output:\n%s\n", err.Error(), string(cmdCombined))
	}

	// Our compilation succeeded, load the combined JSON output.
	contracts, err := compiler.ParseCombinedJSON(cmdStdout, source, v.String(), v.String(), "")
	if err != nil {
		return nil, err
	}

	compilation := types.NewCompilation()
	compilation.Warnings = string(cmdStderr)
	for name, contract := range contracts {
		// Split our name which should be of form "filename:contractname"
		nameSplit := strings.Split(name, ":")
		contractName := nameSplit[len(nameSplit)-1]

		// Convert the abi structure to our parsed abi type
		contractAbi, err := types.ParseABIFromInterface(contract.Info.AbiDefinition)
		if err != nil {
			continue
		}

		// Decode our init and runtime bytecode
		initBytecode, err := hex.DecodeString(strings.TrimPrefix(contract.Code, "0x"))
		if err != nil {
			return nil, fmt.Errorf("unable to parse init bytecode for contract '%s'\n", contractName)
		}
		runtimeBytecode, err := hex.DecodeString(strings.TrimPrefix(contract.RuntimeCode, "0x"))
		if err != nil {
			return nil, fmt.Errorf("unable to parse runtime bytecode for contract '%s'\n", contractName)
		}

		// Prefer the compiler's method identifier map; fall back to selectors derived from the parsed ABI for
		// solc versions without hashes output.
		methodIdentifiers := contract.Hashes
		if len(methodIdentifiers) == 0 {
			methodIdentifiers = make(map[string]string)
			for _, method := range contractAbi.Methods {
				methodIdentifiers[method.Sig] = hex.EncodeToString(crypto.Keccak256([]byte(method.Sig))[:4])
			}
		}

		compilation.Contracts[contractName] = types.CompiledContract{
			Abi:               *contractAbi,
			InitBytecode:      initBytecode,
			RuntimeBytecode:   runtimeBytecode,
			MethodIdentifiers: methodIdentifiers,
		}
	}
	return compilation, nil
}
