package basket

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gsatlink/pos-backend/internal/catalog"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
)

// Session owns one basket editing session: the aggregator, the catalog
// snapshot its stock bounds came from, and the orthogonal editing flag
// (nil means a new sale, otherwise the sale record being edited).
type Session struct {
	ID        string
	Snapshot  *catalog.Snapshot
	CreatedAt time.Time

	mu         sync.Mutex
	agg        Aggregator
	editingID  *uuid.UUID
	lastUsedAt time.Time
}

// State is a read-only view of the session for API responses.
type State struct {
	ID        string
	Lines     []Line
	Total     string
	EditingID *uuid.UUID
	LoadedAt  time.Time
}

func newSession(snapshot *catalog.Snapshot, now time.Time) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Snapshot:   snapshot,
		CreatedAt:  now,
		lastUsedAt: now,
	}
}

// WithAggregator runs fn while holding the session lock. All basket mutations
// go through here so HTTP handlers and the scan pipeline cannot interleave.
func (s *Session) WithAggregator(fn func(agg *Aggregator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsedAt = time.Now()
	return fn(&s.agg)
}

// State captures lines, total and editing flag under the lock.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:        s.ID,
		Lines:     s.agg.Lines(),
		Total:     s.agg.Total().StringFixed(2),
		EditingID: s.editingID,
		LoadedAt:  s.Snapshot.LoadedAt,
	}
}

// SetEditing marks the session as editing an existing sale record.
func (s *Session) SetEditing(recordID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := recordID
	s.editingID = &id
}

// EditingID returns the record under edit, or nil for a new sale.
func (s *Session) EditingID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// ClearAll empties the basket and resets the editing association.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agg.Clear()
	s.editingID = nil
}

// Manager tracks live sessions and expires idle ones lazily.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager builds a session manager with the given idle TTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Manager{
		sessions: map[string]*Session{},
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open creates a session bound to the provided snapshot.
func (m *Manager) Open(snapshot *catalog.Snapshot) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	sess := newSession(snapshot, m.now())
	m.sessions[sess.ID] = sess
	return sess
}

// Get resolves a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "basket session not found")
	}
	return sess, nil
}

// Drop removes a session explicitly.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) evictLocked() {
	cutoff := m.now().Add(-m.ttl)
	for id, sess := range m.sessions {
		sess.mu.Lock()
		idle := sess.lastUsedAt.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(m.sessions, id)
		}
	}
}
