package otp

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Entries are pruned lazily.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}

	m.entries[email] = entry{code: code, expiresAt: now.Add(ttl)}

	return nil
}

func (m *MemoryStore) Consume(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[email]
	if !ok {
		return false, nil
	}

	if !m.now().Before(e.expiresAt) {
		delete(m.entries, email)
		return false, nil
	}

	if e.code != code {
		return false, nil
	}

	delete(m.entries, email)

	return true, nil
}
