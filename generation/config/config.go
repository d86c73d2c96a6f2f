// Package config defines the project configuration consumed by the generation driver.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// GenerationConfig describes the configuration options used by the generation.Generator.
type GenerationConfig struct {
	// DumpPath describes a path the rendered source is written to after every successful generation. If empty,
	// sources are only dumped when the PROTO_FUZZER_DUMP_PATH environment variable requests it.
	DumpPath string `json:"dumpPath"`

	// ArchiveDirectory describes the directory holding the program archive database. If empty, generated
	// programs are not archived.
	ArchiveDirectory string `json:"archiveDirectory"`

	// SolcPath describes the solc binary used to compile generated programs. If empty, "solc" is resolved from
	// the environment.
	SolcPath string `json:"solcPath"`

	// OptimizerEnabled describes whether generated programs are compiled with the optimizer enabled.
	OptimizerEnabled bool `json:"optimizerEnabled"`

	// Verbosity describes the logging verbosity as a zerolog level string (e.g. "info", "debug"). It is checked by
	// Validate but is not applied to any logger.
	Verbosity string `json:"verbosity"`
}

// DefaultGenerationConfig obtains a default configuration for a generation run.
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Verbosity: "info",
	}
}

// ReadGenerationConfigFromFile reads a JSON-serialized GenerationConfig from the provided file path.
// Returns the parsed config, or an error if one occurs.
func ReadGenerationConfigFromFile(path string) (*GenerationConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read generation config from '%s'", path)
	}

	config := DefaultGenerationConfig()
	if err = json.Unmarshal(b, config); err != nil {
		return nil, errors.Wrapf(err, "could not parse generation config from '%s'", path)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// WriteToFile writes the config in JSON form to the provided file path.
func (c *GenerationConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "could not write generation config to '%s'", path)
	}
	return nil
}

// Validate examines the config for unsupported values and returns an error if any are found.
func (c *GenerationConfig) Validate() error {
	switch c.Verbosity {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unsupported verbosity level '%s'", c.Verbosity)
	}
	return nil
}
