package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimeDir = ".ragway"

// GetRuntimePath is usable before any config is parsed (for loading .env).
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("RAGWAY_RUNTIME_PATH"))
}

// relative paths live under the home directory
func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimeDir
	}
	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
