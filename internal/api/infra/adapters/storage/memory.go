// Package storage holds the restaurant catalogue adapters: the in-memory
// store loaded from the data file, the CSV menu catalogue and a Redis
// read-through decorator.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

var _ ports.RestaurantStore = (*MemoryStore)(nil)

// MemoryStore keeps restaurants by id and remembers insertion order for
// listings.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]domain.Restaurant
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]domain.Restaurant)}
}

// Add inserts r, replacing any restaurant with the same id in place.
func (s *MemoryStore) Add(r domain.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.byID[r.ID] = r
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (domain.Restaurant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	return r, ok, nil
}

func (s *MemoryStore) GetAll(_ context.Context) ([]domain.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Restaurant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// LoadRestaurants reads a JSON array of restaurants. A missing file yields an
// empty store.
func LoadRestaurants(path string) (*MemoryStore, error) {
	store := NewMemoryStore()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read restaurants: %w", err)
	}

	var restaurants []domain.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		return nil, fmt.Errorf("storage: decode restaurants %s: %w", path, err)
	}
	for _, r := range restaurants {
		store.Add(r)
	}
	return store, nil
}
