package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// MemoryStore is a process-local Store used for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	now         func() time.Time
}

type memoryCollection struct {
	order []string
	byID  map[string]Document
	byKey map[string]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection), now: time.Now}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{byID: make(map[string]Document), byKey: make(map[string]string)}
		s.collections[name] = c
	}
	return c
}

// FindByKey fetches the document holding key in collection.
func (s *MemoryStore) FindByKey(_ context.Context, collection, key string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok || key == "" {
		return Document{}, shared.ErrNotFound
	}
	id, ok := c.byKey[key]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	return c.byID[id], nil
}

// FindByID fetches a document by its generated ID.
func (s *MemoryStore) FindByID(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	doc, ok := c.byID[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	return doc, nil
}

// List returns every document of a collection in insertion order.
func (s *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]Document, 0)
	c, ok := s.collections[collection]
	if !ok {
		return docs, nil
	}
	for _, id := range c.order {
		docs = append(docs, c.byID[id])
	}
	return docs, nil
}

// Insert stores body and returns the generated ID.
func (s *MemoryStore) Insert(_ context.Context, collection, key string, body any) (string, error) {
	raw, err := encodeBody(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	if key != "" {
		if _, taken := c.byKey[key]; taken {
			return "", ErrDuplicateKey
		}
	}
	id := uuid.NewString()
	c.byID[id] = Document{ID: id, Collection: collection, Key: key, Body: raw, CreatedAt: s.now().UTC()}
	c.order = append(c.order, id)
	if key != "" {
		c.byKey[key] = id
	}
	return id, nil
}

// DeleteByID removes a document and reports how many were deleted.
func (s *MemoryStore) DeleteByID(_ context.Context, collection, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	doc, ok := c.byID[id]
	if !ok {
		return 0, nil
	}
	delete(c.byID, id)
	if doc.Key != "" {
		delete(c.byKey, doc.Key)
	}
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

var _ Store = (*MemoryStore)(nil)
