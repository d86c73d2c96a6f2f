package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestAddAndRemoveWriter will test the Logger.AddWriter and Logger.RemoveWriter functions to ensure that they work
// as expected.
func TestAddAndRemoveWriter(t *testing.T) {
	// Create a base logger
	logger := NewLogger(zerolog.InfoLevel, false)

	// Add two writers
	var bufOne, bufTwo bytes.Buffer
	logger.AddWriter(&bufOne)
	logger.AddWriter(&bufTwo)
	assert.Equal(t, 2, len(logger.writers))

	// Try to add a duplicate writer and ensure the list has not changed
	logger.AddWriter(&bufOne)
	assert.Equal(t, 2, len(logger.writers))

	// Remove each writer
	logger.RemoveWriter(&bufOne)
	logger.RemoveWriter(&bufTwo)
	assert.Equal(t, 0, len(logger.writers))

	// Removing a writer that is not registered is a no-op
	logger.RemoveWriter(&bufOne)
	assert.Equal(t, 0, len(logger.writers))
}

// TestStructuredOutput will test that messages logged through a writer-backed logger show up in structured form.
func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buf)

	logger.Info("program generated", "extra detail")
	assert.True(t, strings.Contains(buf.String(), "program generated extra detail"))

	// Events below the configured level are suppressed.
	buf.Reset()
	logger.Debug("hidden")
	assert.Equal(t, "", buf.String())
}

// TestSubLoggerContext will test that sub-loggers attach their key-value context to emitted events.
func TestSubLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buf)
	subLogger := logger.NewSubLogger("module", "generation")

	subLogger.Info("built program")
	assert.True(t, strings.Contains(buf.String(), `"module":"generation"`))
}
