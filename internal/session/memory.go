package session

import (
	"context"
	"sync"
	"time"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

type memoryEntry struct {
	mu      sync.Mutex
	session *model.UserSession
}

// MemoryStore хранит сессии в памяти процесса
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
	}
}

// entry возвращает запись пользователя, создавая ее при первом обращении
func (m *MemoryStore) entry(userID string) (*memoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.entries[userID]
	if !ok {
		e = &memoryEntry{session: model.NewUserSession(userID)}
		m.entries[userID] = e
	}
	return e, nil
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*model.UserSession, error) {
	e, err := m.entry(userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, userID string, fn UpdateFunc) error {
	e, err := m.entry(userID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := e.session.Clone()
	if err := fn(working); err != nil {
		return err
	}
	working.UpdatedAt = time.Now()
	e.session = working
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context, userID string) error {
	return m.Update(ctx, userID, func(s *model.UserSession) error {
		s.Reset()
		return nil
	})
}

// Len количество известных хранилищу пользователей
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = make(map[string]*memoryEntry)
	return nil
}
