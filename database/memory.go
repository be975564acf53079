package database

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. Lists come back in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string][]Document
	newID func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string][]Document),
		newID: uuid.NewString,
	}
}

func (s *MemoryStore) Add(ctx context.Context, path Path, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Unavailable("add", path.String(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	key := path.String()
	s.docs[key] = append(s.docs[key], Document{ID: id, Fields: copyFields(fields)})
	return id, nil
}

func (s *MemoryStore) List(ctx context.Context, path Path) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("list", path.String(), err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyDocuments(s.docs[path.String()]), nil
}

func (s *MemoryStore) Close() error { return nil }
