package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/history"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
)

var (
	ErrNotFound = errors.New("session not found")
)

// Session is one editing session: the document history plus bookkeeping.
// Callers hold Lock while reading or changing History.
type Session struct {
	mu        sync.Mutex
	ID        string
	History   *history.Store[resume.Document]
	CreatedAt time.Time
	UpdatedAt time.Time

	// Pending is the latest rewrite begun on this session, if any.
	Pending *PendingRewrite
}

// PendingRewrite pairs a ticket with the document it was issued against.
type PendingRewrite struct {
	Ticket int64
	Base   resume.Document
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// NewSession starts a history at doc. limit caps the undo depth (0 = unbounded).
func NewSession(id string, doc resume.Document, limit int) *Session {
	now := time.Now().UTC()
	return &Session{
		ID: id,
		History: history.New(doc, resume.Document.Equal,
			history.WithClone(resume.Document.Clone),
			history.WithLimit[resume.Document](limit)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MemoryRepo keeps sessions in process memory. Sessions are never persisted;
// they disappear on Delete, Expire or process exit.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Session
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*Session)}
}

func (m *MemoryRepo) Create(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[s.ID] = s
	return nil
}

func (m *MemoryRepo) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.store[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// List returns sessions ordered by creation time.
func (m *MemoryRepo) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.store))
	for _, s := range m.store {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Touch records activity on a session. The caller must hold the session lock.
func (m *MemoryRepo) Touch(s *Session) {
	s.UpdatedAt = time.Now().UTC()
}

func (m *MemoryRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// Expire removes sessions idle since before cutoff and returns their ids.
func (m *MemoryRepo) Expire(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var gone []string
	for id, s := range m.store {
		s.Lock()
		idle := s.UpdatedAt.Before(cutoff)
		s.Unlock()
		if idle {
			delete(m.store, id)
			gone = append(gone, id)
		}
	}
	return gone
}
