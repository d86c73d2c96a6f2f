package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerationConfigRoundTrip will test that a config written to disk reads back equal.
func TestGenerationConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solgen.json")

	config := DefaultGenerationConfig()
	config.ArchiveDirectory = "archive"
	config.OptimizerEnabled = true
	assert.NoError(t, config.WriteToFile(path))

	read, err := ReadGenerationConfigFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, config, read)
}

// TestGenerationConfigValidate will test that unsupported verbosity levels are rejected.
func TestGenerationConfigValidate(t *testing.T) {
	config := DefaultGenerationConfig()
	assert.NoError(t, config.Validate())

	config.Verbosity = "loud"
	assert.Error(t, config.Validate())
}

// TestReadGenerationConfigMissingFile will test that reading a missing file surfaces an error.
func TestReadGenerationConfigMissingFile(t *testing.T) {
	_, err := ReadGenerationConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
