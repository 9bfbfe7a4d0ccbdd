package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
)

// ErrCapacity is returned by Open when the manager is full.
var ErrCapacity = errors.New("session limit reached")

// Session is one connected user's calculator. It keeps a sheet per edition
// so switching editions and back restores the earlier configuration.
// All methods are safe for concurrent use.
type Session struct {
	// ID is the session UUID used in logs.
	ID string
	// RemoteAddr is the peer address, informational only.
	RemoteAddr string
	// Opened is when the session was created.
	Opened time.Time

	mu     sync.Mutex
	active ruleset.Edition
	sheets map[ruleset.Edition]*Sheet
}

// Edition returns the active edition.
func (s *Session) Edition() ruleset.Edition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SwitchEdition makes e active, creating its sheet on first use.
func (s *Session) SwitchEdition(e ruleset.Edition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = e
	if _, ok := s.sheets[e]; !ok {
		s.sheets[e] = NewSheet(e)
	}
}

// With runs fn against the active sheet while holding the session lock.
//
// Postcondition: Returns fn's error.
func (s *Session) With(fn func(*Sheet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.sheets[s.active])
}

// ResetEdition discards the active sheet and starts a fresh one.
func (s *Session) ResetEdition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[s.active] = NewSheet(s.active)
}

// Manager tracks all live calculator sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	edition     ruleset.Edition
	now         func() time.Time
}

// NewManager creates an empty Manager. New sessions start in edition.
// maxSessions <= 0 means unlimited.
//
// Precondition: edition must be supported.
func NewManager(edition ruleset.Edition, maxSessions int) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		edition:     edition,
		now:         time.Now,
	}
}

// Open registers a new session for remoteAddr.
//
// Postcondition: Returns the session with a fresh UUID, or ErrCapacity.
func (m *Manager) Open(remoteAddr string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("%d sessions open: %w", len(m.sessions), ErrCapacity)
	}

	sess := &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		Opened:     m.now(),
		active:     m.edition,
		sheets:     map[ruleset.Edition]*Sheet{m.edition: NewSheet(m.edition)},
	}
	m.sessions[sess.ID] = sess
	return sess, nil
}

// Close removes a session.
//
// Postcondition: Returns an error if id is not registered.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %q not found", id)
	}
	delete(m.sessions, id)
	return nil
}

// IDs returns every open session ID in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
