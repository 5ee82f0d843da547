// Package testutil provides testing utilities for the pharmintel project.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestDir creates a temp directory, resolves symlinks (for macOS),
// changes to it, and registers cleanup to restore the original working directory.
// Returns the resolved temp directory path.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.Chdir(originalWd)
	})

	return tmpDir
}

// SetupDataDir points PHARMINTEL_DATA_DIR at a fresh temp directory and
// clears the other PHARMINTEL_* overrides for the duration of the test.
func SetupDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("PHARMINTEL_DATA_DIR", dir)
	for _, key := range []string{"PRESET", "SCENARIO", "FAILURE_POLICY", "CATALOG", "LOG_LEVEL", "DB_PATH"} {
		t.Setenv("PHARMINTEL_"+key, "")
	}
	return dir
}

// QuickScript writes a Lua timeline script in dir that completes every agent
// one millisecond apart, and returns its path.
func QuickScript(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "quick.lua")
	src := "for i = 1, #agents do\n  step{agent = i, at = i}\nend\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
