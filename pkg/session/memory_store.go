package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time
	data      []byte
}

// MemoryStore keeps encoded sessions in process memory.
// Sessions are lost on restart and not shared between instances;
// use it for development and tests, RedisStore otherwise.
type MemoryStore struct {
	items  map[string]memoryEntry
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// NewMemoryStore creates an in-memory store. A positive cleanupInterval
// starts a background janitor that drops expired sessions; call Close to stop it.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	m := &MemoryStore{
		items: make(map[string]memoryEntry),
		done:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.janitor(cleanupInterval)
	}
	return m
}

// Get retrieves a session by its token.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	e, ok := m.items[token]
	if ok && time.Now().After(e.expiresAt) {
		delete(m.items, token)
		m.mu.Unlock()
		return nil, ErrExpired
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return unmarshalSession(e.data)
}

// Save persists the session under its current token.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidToken
	}
	data, err := marshalSession(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.Join(ErrStoreFailed, errors.New("memory store closed"))
	}
	m.items[s.Token] = memoryEntry{expiresAt: s.ExpiresAt, data: data}
	return nil
}

// Delete removes the session stored under token.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, token)
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet collected.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor. Further saves fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for token, e := range m.items {
				if now.After(e.expiresAt) {
					delete(m.items, token)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Store = (*MemoryStore)(nil)
