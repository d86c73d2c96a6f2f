package utils

import (
	"os"
)

// MakeDirectory creates a directory at the given path, including any parent directories which do not exist.
// If the directory already exists, this is a no-op.
func MakeDirectory(dirToMake string) error {
	return os.MkdirAll(dirToMake, 0755)
}
