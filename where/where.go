// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/filesystem"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "TVLOOP_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden through the TVLOOP_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Profiles resolves the directory holding one persisted state file per profile.
func Profiles() string {
	return ensureDir(filepath.Join(Config(), "profiles"))
}

// Profile resolves the persisted state file of the named profile.
func Profile(name string) string {
	return filepath.Join(Profiles(), name+".json")
}

// ActiveProfile resolves the file naming the currently active profile.
// Writing a new name into it switches profiles for running sessions.
func ActiveProfile() string {
	return filepath.Join(Config(), "active_profile")
}

// Cache resolves the directory for expiring network caches.
func Cache() string {
	return ensureDir(filepath.Join(lo.Must(os.UserCacheDir()), constant.App))
}

// Temp resolves a volatile directory for transient artifacts such as player sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
