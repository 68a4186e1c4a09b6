// Package store provides durable per-profile key/value string storage.
package store

import (
	"errors"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/where"
)

// ErrNoProfile is returned when a store is opened or switched without a profile name.
var ErrNoProfile = errors.New("no profile selected")

// Store is durable string storage scoped to the active profile.
type Store interface {
	GetString(key string) (string, error)
	SetString(key, value string) error
	// OnProfileChanged registers fn to run after the active profile was switched.
	OnProfileChanged(fn func())
}

// ActiveProfile returns the profile named in the active profile file,
// falling back to the configured profile.
func ActiveProfile() string {
	if name := readProfile(where.ActiveProfile()); name != "" {
		return name
	}

	return viper.GetString(key.ProfileName)
}

func readProfile(path string) string {
	data, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// SetActiveProfile writes the active profile file.
func SetActiveProfile(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoProfile
	}

	return afero.WriteFile(filesystem.API(), where.ActiveProfile(), []byte(name+"\n"), 0o644)
}

type listeners []func()

func (l listeners) notify() {
	for _, fn := range l {
		fn()
	}
}
