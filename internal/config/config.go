// Package config resolves the local data and cache directories creeper
// uses for the artifact store, and exposes the handful of environment
// knobs that control network behavior.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// EnvHome overrides the local data directory (storage + index).
	EnvHome = "CREEPER_HOME"

	// EnvCacheDir overrides the download-staging cache directory.
	EnvCacheDir = "CREEPER_CACHE"

	// EnvAPITimeout configures the HTTP request timeout.
	EnvAPITimeout = "CREEPER_API_TIMEOUT"

	// DefaultAPITimeout is the default timeout for registry and upstream
	// manifest requests.
	DefaultAPITimeout = 30 * time.Second
)

// GetAPITimeout returns the configured API timeout from CREEPER_API_TIMEOUT.
// If not set or invalid, returns DefaultAPITimeout. Accepts duration
// strings like "30s", "1m", "2m30s".
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}

	if duration < 1*time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1s\n",
			EnvAPITimeout, duration)
		return 1 * time.Second
	}
	if duration > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 10m\n",
			EnvAPITimeout, duration)
		return 10 * time.Minute
	}

	return duration
}

// Config holds the directories creeper reads and writes.
type Config struct {
	DataDir  string // local data directory: storage/, storage-index.db
	CacheDir string // download staging directory
}

// DefaultConfig resolves the platform's local-data and cache directories,
// honoring CREEPER_HOME and CREEPER_CACHE overrides.
func DefaultConfig() (*Config, error) {
	dataDir := os.Getenv(EnvHome)
	if dataDir == "" {
		dir, err := userDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get local data directory: %w", err)
		}
		dataDir = filepath.Join(dir, "creeper")
	}

	cacheDir := os.Getenv(EnvCacheDir)
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get cache directory: %w", err)
		}
		cacheDir = filepath.Join(dir, "creeper")
	}

	return &Config{
		DataDir:  dataDir,
		CacheDir: cacheDir,
	}, nil
}

// userDataDir returns the platform's local (non-roaming, non-synced) data
// directory, the Go analogue of the host convention os.UserCacheDir
// documents for caches but stdlib has no equivalent for.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir := os.Getenv("LOCALAPPDATA")
		if dir == "" {
			return "", fmt.Errorf("%%LOCALAPPDATA%% is not defined")
		}
		return dir, nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// StorageDir is the root of the content-addressed blob store:
// <data>/storage/<blake3[0:2]>/<blake3>.
func (c *Config) StorageDir() string {
	return filepath.Join(c.DataDir, "storage")
}

// IndexPath is the path to the CAS's SQLite index.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, "storage-index.db")
}

// EnsureDirectories creates the data and cache directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.StorageDir(), c.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
