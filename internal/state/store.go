package state

import "sync"

// Store caches session state produced by the WhatsApp event handlers and
// read by the HTTP surface: the latest QR code, the readiness flag, and the
// JID of the configured group once it has been resolved.
type Store struct {
	mu       sync.RWMutex
	qr       string
	ready    bool
	groupJID string
}

// Snapshot is a consistent read of the whole store
type Snapshot struct {
	QR          string
	Ready       bool
	GroupCached bool
}

func New() *Store {
	return &Store{}
}

// SetQR stores the latest QR code, replacing any previous one
func (s *Store) SetQR(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qr = code
}

// QR returns the cached QR code, if any
func (s *Store) QR() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qr, s.qr != ""
}

// SetReady marks the session ready. groupJID may be empty when the configured
// group could not be resolved; readiness is recorded either way.
func (s *Store) SetReady(groupJID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.groupJID = groupJID
}

// Ready reports whether the session is ready
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// GroupJID returns the cached group JID, if one is resolved
func (s *Store) GroupJID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupJID, s.groupJID != ""
}

// Clear resets readiness and the group reference together so they are never
// inconsistent. Called on auth failure and disconnect.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.groupJID = ""
}

// Snapshot returns a consistent view for the /status endpoint
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		QR:          s.qr,
		Ready:       s.ready,
		GroupCached: s.groupJID != "",
	}
}
