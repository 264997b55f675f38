package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/latwalk/internal/constants"
)

// LocalDataPath returns the .latwalk directory for the given project root.
func LocalDataPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DataDirName)
}

// DatabasePath returns the run database path for the given project root.
func DatabasePath(projectRoot string) string {
	return filepath.Join(LocalDataPath(projectRoot), constants.DatabaseFileName)
}

// EnsureLocalDataDir creates the .latwalk directory if it doesn't exist.
func EnsureLocalDataDir(projectRoot string) (string, error) {
	dir := LocalDataPath(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", constants.DataDirName, err)
	}
	return dir, nil
}
