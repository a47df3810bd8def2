// Package cli holds helpers shared by the album command-line tool.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveDirectory checks that dirPath exists and is a directory and returns
// its absolute path.
func ResolveDirectory(dirPath string) (string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", dirPath)
		}
		return "", fmt.Errorf("failed to access directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", dirPath)
	}

	if abs, err := filepath.Abs(dirPath); err == nil {
		dirPath = abs
	}
	return dirPath, nil
}
