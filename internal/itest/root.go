//go:build integration

package itest

import (
	"fmt"
	"os"
	"path/filepath"
)

// moduleRoot walks up from the test's working directory to the directory
// holding go.mod, so the CLI can be run as ./cmd/mediashop.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if st, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !st.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod above %s", dir)
		}
		dir = parent
	}
}
