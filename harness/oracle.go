// Package harness orchestrates the compile, deploy, and execute cycle for one generated program against a
// pluggable execution backend, and checks the oracle: the test entry point of the top-level contract must return
// the 32-byte big-endian encoding of unsigned integer zero.
package harness

import (
	"bytes"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// expectedTestOutput is the oracle value: a 256-bit unsigned zero in its 32-byte big-endian encoding.
var expectedTestOutput = uint256.NewInt(0).Bytes32()

// ExpectedTestOutput returns the output the test entry point must produce for the oracle to hold.
func ExpectedTestOutput() [32]byte {
	return expectedTestOutput
}

// IsExpectedOutput returns true if the provided execution output matches the oracle.
func IsExpectedOutput(output []byte) bool {
	return len(output) == len(expectedTestOutput) && bytes.Equal(output, expectedTestOutput[:])
}

// MethodID computes the four byte selector for the provided method signature.
func MethodID(signature string) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return hash.Sum(nil)[:4]
}
