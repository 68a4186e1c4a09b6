// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// Every persisted artifact (config, logs, profile state) goes through afero so tests
// can swap in an in-memory backend.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	set(afero.NewOsFs())
}

// SetMemMapFs installs a volatile in-memory backend for unit tests.
func SetMemMapFs() {
	set(afero.NewMemMapFs())
}

// IsNative reports whether the backend is the real OS filesystem.
// Watchers relying on kernel notifications only work on it.
func IsNative() bool {
	_, ok := API().Fs.(*afero.OsFs)
	return ok
}

func set(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}
