// Package testutil provides shared test helpers used across creeper's
// internal packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creeperpm/creeper/internal/config"
)

// TempDir creates a temporary directory and returns a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "creeper-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// NewTestConfig creates a Config rooted at a temporary directory, with
// all directories pre-created.
func NewTestConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()
	tmpDir, cleanup := TempDir(t)

	cfg := &config.Config{
		DataDir:  filepath.Join(tmpDir, "data"),
		CacheDir: filepath.Join(tmpDir, "cache"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		cleanup()
		t.Fatalf("failed to create config directories: %v", err)
	}

	return cfg, cleanup
}

