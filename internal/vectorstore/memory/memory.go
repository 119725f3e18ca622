package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tabvec/internal/domain"
)

// Storage is a simple in-memory vector store keyed by row identifier.
// Enumeration follows Go map iteration and is therefore unordered.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[int][]float32
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = make(map[int][]float32)
	return nil
}

func (s *Storage) Upsert(_ context.Context, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectors == nil {
		return errors.New("storage not initialized")
	}
	for _, r := range records {
		if len(r.Vector) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, want %d", r.ID, len(r.Vector), s.dimension)
		}
	}
	for _, r := range records {
		v := make([]float32, len(r.Vector))
		copy(v, r.Vector)
		s.vectors[r.ID] = v
	}
	return nil
}

func (s *Storage) All(_ context.Context) ([]domain.VectorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VectorRecord, 0, len(s.vectors))
	for id, v := range s.vectors {
		c := make([]float32, len(v))
		copy(c, v)
		out = append(out, domain.VectorRecord{ID: id, Vector: c})
	}
	return out, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	return nil
}
