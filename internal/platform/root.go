package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/notesync/internal/config"
)

// ErrRootNotFound is returned when no project marker exists above the start dir.
var ErrRootNotFound = errors.New("root not found")

// FindRoot recursively looks upwards for a notesync project root.
// Indicators are: a notesync.yaml file or a .notesync cache directory.
// It returns the absolute path of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, config.DefaultPath) || hasFile(dir, ".notesync") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
