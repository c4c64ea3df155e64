// Package filex holds small filesystem helpers for the client data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir makes sure dir exists and returns its absolute path.
// Relative paths are resolved against the current working directory.
func EnsureDataDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// DataFile returns the path of name inside the data directory, creating the
// directory when needed.
func DataFile(dir, name string) (string, error) {
	abs, err := EnsureDataDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, name), nil
}
