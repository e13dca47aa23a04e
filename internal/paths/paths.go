// Package paths resolves the configuration directory and the project root,
// and manages the small side files that live next to them.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// AppName names the per-user configuration directory.
const AppName = "tabledb"

// Environment variable names for directory overrides.
const (
	EnvConfigDir  = "TABLEDB_CONFIG_DIR"
	EnvProjectDir = "TABLEDB_PROJECT_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/tabledb (fallback ~/.config/tabledb)
// macOS:   ~/Library/Application Support/tabledb
// Windows: %APPDATA%/tabledb
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > TABLEDB_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveProjectDir returns the project root following the precedence chain:
// flag > configValue > TABLEDB_PROJECT_DIR env > active project recorded in
// configDir > nearest ancestor of the working directory holding a manifest.
//
// Explicit choices (flag, config, env) are returned even when no manifest
// exists yet, so that commands such as init can create one there.
func ResolveProjectDir(flag, configValue, configDir string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(EnvProjectDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	if configDir != "" {
		if dir, err := ReadActiveProject(configDir); err == nil {
			return dir, nil
		}
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	if dir, ok := FindProjectRoot(cwd); ok {
		return dir, nil
	}
	return "", fmt.Errorf("%w: no %s in %s or its parents", types.ErrNoActiveProject, storage.ManifestFile, cwd)
}

// FindProjectRoot walks up from start looking for a directory that holds a
// project manifest.
func FindProjectRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if storage.Exists(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
