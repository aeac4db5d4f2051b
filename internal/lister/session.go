package lister

import "sync"

// Session records whether the remote client is authenticated and with which
// key. It is ready only after a successful initialisation, and any divergence
// between the key being used and the active key counts as not authenticated.
type Session struct {
	mu        sync.Mutex
	ready     bool
	activeKey string
}

// Ready reports whether the last initialisation succeeded and has not been reset.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// ActiveKey returns the key the session was initialised with, or "".
func (s *Session) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKey
}

// Matches reports whether the session is ready for exactly this key.
func (s *Session) Matches(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && key != "" && s.activeKey == key
}

// Reset marks the session not ready and forgets the active key.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.activeKey = ""
}

// Observe must be called whenever the key being edited changes. A ready
// session whose active key differs from key is reset immediately; the
// return value reports whether that happened.
func (s *Session) Observe(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready && s.activeKey != key {
		s.ready = false
		s.activeKey = ""
		return true
	}
	return false
}

func (s *Session) markReady(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.activeKey = key
}
