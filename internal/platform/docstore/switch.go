package docstore

import "sync"

// Mode is the connectivity state of a Switch.
type Mode int

const (
	Disconnected Mode = iota
	Connected
)

func (m Mode) String() string {
	switch m {
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Switch owns the single authoritative store handle. Exactly one of the remote backend
// or the fallback store is active at any instant; every read of that choice goes
// through the mutex.
type Switch struct {
	mu       sync.RWMutex
	remote   Remote
	fallback *FallbackStore
}

func NewSwitch(fallback *FallbackStore) *Switch {
	if fallback == nil {
		fallback = NewFallbackStore()
	}
	return &Switch{fallback: fallback}
}

// Active returns the authoritative store and the mode it was selected under.
func (s *Switch) Active() (Store, Mode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remote != nil {
		return s.remote, Connected
	}
	return s.fallback, Disconnected
}

func (s *Switch) Mode() Mode {
	_, mode := s.Active()
	return mode
}

// Fallback exposes the in-memory store for degraded reads and seeding.
func (s *Switch) Fallback() *FallbackStore {
	return s.fallback
}

// Remote returns the connected backend, or nil while disconnected.
func (s *Switch) Remote() Remote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote
}

// Promote makes remote authoritative. It returns false if a remote was already active,
// in which case the caller still owns remote.
func (s *Switch) Promote(remote Remote) bool {
	if remote == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote != nil {
		return false
	}
	s.remote = remote
	return true
}

// Demote reverts to the fallback store and hands the previous remote back to the caller.
func (s *Switch) Demote() Remote {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.remote
	s.remote = nil
	return previous
}
