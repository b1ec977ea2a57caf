package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is looked up in the working directory and its parents.
const ConfigFileName = ".mdwiki.yaml"

// FindConfig recursively looks upwards from startDir for ConfigFileName.
// It returns the absolute path of the first one found.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found above %s", ConfigFileName, abs)
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
