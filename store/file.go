package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/metafates/gache"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/where"
)

type backend interface {
	Get() (map[string]string, bool, error)
	Set(map[string]string) error
}

func openBackend(profile string) backend {
	return gache.New[map[string]string](
		&gache.Options{
			Path:       where.Profile(profile),
			FileSystem: &filesystem.GacheFs{},
		},
	)
}

// File keeps one persisted map per profile.
type File struct {
	mu        sync.Mutex
	profile   string
	cacher    backend
	listeners listeners
}

// Open opens the store of the named profile.
func Open(profile string) (*File, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return nil, ErrNoProfile
	}

	return &File{profile: profile, cacher: openBackend(profile)}, nil
}

// Profile returns the name of the open profile.
func (f *File) Profile() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

func (f *File) load() (map[string]string, error) {
	values, expired, err := f.cacher.Get()
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", f.profile, err)
	}
	if expired || values == nil {
		return make(map[string]string), nil
	}
	return values, nil
}

// GetString implements Store. Missing keys read as "".
func (f *File) GetString(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}

	return values[key], nil
}

// SetString implements Store.
func (f *File) SetString(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}

	values[key] = value
	if err := f.cacher.Set(values); err != nil {
		return fmt.Errorf("write profile %q: %w", f.profile, err)
	}

	return nil
}

// OnProfileChanged implements Store.
func (f *File) OnProfileChanged(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// SwitchProfile points the store at another profile and notifies listeners.
// Switching to the open profile does nothing.
func (f *File) SwitchProfile(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoProfile
	}

	f.mu.Lock()
	if name == f.profile {
		f.mu.Unlock()
		return nil
	}

	log.Infof("switching profile %q -> %q", f.profile, name)
	f.profile = name
	f.cacher = openBackend(name)
	notify := append(listeners(nil), f.listeners...)
	f.mu.Unlock()

	notify.notify()
	return nil
}
