package memory

import (
	"context"
	"sync"

	"github.com/aretw0/eventstorm/pkg/domain"
)

// Store implements ports.WorkshopStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Document),
	}
}

// Save persists a deep copy of the document.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.Metadata.ID == "" {
		return domain.Validation("workshop id cannot be empty")
	}
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[copied.Metadata.ID] = copied
	return nil
}

// Load retrieves a copy of the document so callers can't mutate the store by pointer.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return nil, domain.NotFound("workshop", id)
	}
	return doc.Clone(), nil
}

// Delete removes the workshop.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return domain.NotFound("workshop", id)
	}
	delete(s.data, id)
	return nil
}

// List returns the summaries of every stored workshop.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Summary, 0, len(s.data))
	for _, doc := range s.data {
		out = append(out, doc.Summarize())
	}
	domain.SortSummaries(out)
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
