package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
	"github.com/jcmexdev/foodme/internal/pkg/cache"
)

const cacheOperation = "restaurant"

var _ ports.RestaurantStore = (*CachedStore)(nil)

// CachedStore reads single restaurants through a cache. Cache failures are
// logged and the lookup falls back to the wrapped store.
type CachedStore struct {
	next   ports.RestaurantStore
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(next ports.RestaurantStore, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{next: next, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (domain.Restaurant, bool, error) {
	key := s.cache.GenerateKey(cacheOperation, id)

	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "restaurant cache read failed", "restaurantId", id, "error", err)
	}
	if hit {
		var r domain.Restaurant
		if err := json.Unmarshal([]byte(raw), &r); err == nil {
			return r, true, nil
		}
		s.logger.WarnContext(ctx, "discarding corrupt cache entry", "key", key)
	}

	r, ok, err := s.next.GetByID(ctx, id)
	if err != nil || !ok {
		return r, ok, err
	}

	if data, err := json.Marshal(r); err == nil {
		if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
			s.logger.WarnContext(ctx, "restaurant cache write failed", "restaurantId", id, "error", err)
		}
	}
	return r, true, nil
}

// GetAll is not cached; the listing is served straight from the store.
func (s *CachedStore) GetAll(ctx context.Context) ([]domain.Restaurant, error) {
	return s.next.GetAll(ctx)
}
