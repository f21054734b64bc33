package question

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a question does not exist or belongs to
// another user.
var ErrNotFound = errors.New("question not found")

// Record is one stored question together with the classification the
// generator UI filed it under.
type Record struct {
	Subject  string   `json:"subject"`
	Topic    string   `json:"topic,omitempty"`
	Question Question `json:"question"`
}

// Store persists a user's question bank. The export layer does not use it
// directly; the handler layer loads questions here and passes them into the
// encoders as plain data.
type Store interface {
	Put(ctx context.Context, userID string, rec Record) error
	Get(ctx context.Context, userID, id string) (Record, error)
	List(ctx context.Context, userID, subject string) ([]Record, error)
	Delete(ctx context.Context, userID, id string) error
}

type memoryStore struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Record
	order  map[string][]string
}

// NewInMemoryStore returns a Store for tests and single-process dev use.
func NewInMemoryStore() Store {
	return &memoryStore{
		byUser: map[string]map[string]Record{},
		order:  map[string][]string{},
	}
}

func (m *memoryStore) Put(ctx context.Context, userID string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byUser[userID] == nil {
		m.byUser[userID] = map[string]Record{}
	}
	id := rec.Question.ID
	if _, exists := m.byUser[userID][id]; !exists {
		m.order[userID] = append(m.order[userID], id)
	}
	m.byUser[userID][id] = rec
	return nil
}

func (m *memoryStore) Get(ctx context.Context, userID, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byUser[userID][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) List(ctx context.Context, userID, subject string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, id := range m.order[userID] {
		rec, ok := m.byUser[userID][id]
		if !ok {
			continue
		}
		if subject == "" || rec.Subject == subject {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUser[userID][id]; !ok {
		return ErrNotFound
	}
	delete(m.byUser[userID], id)
	return nil
}
