// Package vrag holds process-wide defaults shared by the vragkit packages.
package vrag

import (
	"os"
	"path/filepath"
)

const (
	DefaultAppName = "vragkit"

	DefaultTokenizerModel = "gpt-4o"
	DefaultCacheNamespace = "llm_response_cache"
	DefaultCacheBackend   = "memory"
	DefaultDatabaseFile   = "vragkit.db"
)

var (
	// DefaultConfigPath is the per-user config directory searched by config.LoadConfig.
	DefaultConfigPath = filepath.Join(userConfigDir(), DefaultAppName)
	// DefaultWorkingDir holds json kv files and the libsql cache database.
	DefaultWorkingDir = filepath.Join(userCacheDir(), DefaultAppName)
)

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}
