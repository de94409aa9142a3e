package session

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInvariant is returned when a role that needs a token has none.
	ErrInvariant = errors.New("session: role requires a token")
)

// Session is the per-visitor state the portal keeps: the bearer token issued by
// the backend and the role the visitor is acting as.
type Session struct {
	Token string
	Role  Role
}

// HasToken reports whether a bearer token is present.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// Store persists sessions by id. Writes are last-write-wins per field; there is
// no cross-request coordination beyond that.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	// SetRole stores role. RoleAnonymous removes the field.
	SetRole(ctx context.Context, id string, role Role) error
	// SetToken stores token. An empty token removes the field.
	SetToken(ctx context.Context, id, token string) error
	// Clear removes token and role together.
	Clear(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. Used by tests and by
// SESSION_STORE=memory for single-instance development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessions[id], nil
}

func (m *MemoryStore) SetRole(_ context.Context, id string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[id]
	s.Role = role
	m.put(id, s)
	return nil
}

func (m *MemoryStore) SetToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[id]
	s.Token = token
	m.put(id, s)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// put must be called with mu held.
func (m *MemoryStore) put(id string, s Session) {
	if s == (Session{}) {
		delete(m.sessions, id)
		return
	}
	m.sessions[id] = s
}
