package store

import "sync"

// Memory is a Store that keeps every profile in memory.
type Memory struct {
	mu        sync.Mutex
	profile   string
	profiles  map[string]map[string]string
	writes    int
	listeners listeners
}

// NewMemory creates an empty in-memory store on the named profile.
func NewMemory(profile string) *Memory {
	return &Memory{
		profile:  profile,
		profiles: map[string]map[string]string{profile: {}},
	}
}

// GetString implements Store.
func (m *Memory) GetString(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[m.profile][key], nil
}

// SetString implements Store.
func (m *Memory) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.profiles[m.profile][key] = value
	return nil
}

// Writes returns how many times SetString was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// OnProfileChanged implements Store.
func (m *Memory) OnProfileChanged(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// SwitchProfile changes the active profile and notifies listeners.
func (m *Memory) SwitchProfile(name string) error {
	if name == "" {
		return ErrNoProfile
	}

	m.mu.Lock()
	m.profile = name
	if _, ok := m.profiles[name]; !ok {
		m.profiles[name] = map[string]string{}
	}
	notify := append(listeners(nil), m.listeners...)
	m.mu.Unlock()

	notify.notify()
	return nil
}
