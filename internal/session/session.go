package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized reports a missing, expired, or logged-out session.
var ErrUnauthorized = errors.New("not logged in")

// State is the page a client is on.
type State string

const (
	// StateLogin is the sign-up/login screen. Recommendations are not served.
	StateLogin State = "login"
	// StateMain is the recommendation screen, reachable only after login.
	StateMain State = "main"
)

// Session is one client's login state.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	State     State     `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager tracks sessions in memory.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager whose sessions live for ttl.
func NewManager(ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	m := &Manager{ttl: ttl, now: time.Now, sessions: make(map[string]*Session)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login moves username to the main screen and returns its new session.
func (m *Manager) Login(username string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()

	s := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		State:     StateMain,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[s.Token] = s
	return *s
}

// Logout returns the session to the login screen. The token stays known
// until it expires so clients can still read their state, but Authorize
// rejects it.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[token]; ok {
		s.State = StateLogin
	}
}

// Lookup returns the unexpired session for token in whatever state it is in.
func (m *Manager) Lookup(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || !m.now().Before(s.ExpiresAt) {
		return Session{}, false
	}
	return *s, true
}

// Authorize returns the session for token when it is live and on the main
// screen.
func (m *Manager) Authorize(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrUnauthorized
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, ErrUnauthorized
	}
	if s.State != StateMain {
		return Session{}, ErrUnauthorized
	}
	return *s, nil
}

// Len returns the number of tracked sessions, expired ones included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) pruneLocked() {
	now := m.now()
	for token, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}
