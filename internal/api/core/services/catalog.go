package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
	"github.com/jcmexdev/foodme/internal/api/core/ports"
)

var _ ports.CatalogService = (*CatalogService)(nil)

// CatalogService serves the restaurant listing and detail views.
type CatalogService struct {
	store  ports.RestaurantStore
	menus  ports.MenuCatalog
	logger *slog.Logger
}

func NewCatalogService(store ports.RestaurantStore, menus ports.MenuCatalog, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, menus: menus, logger: loggerOrDefault(logger)}
}

// ListRestaurants returns every restaurant without its menu.
func (s *CatalogService) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	s.logger.InfoContext(ctx, "Fetching restaurant list")

	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list restaurants: %w", err)
	}
	out := make([]domain.Restaurant, len(all))
	for i, r := range all {
		out[i] = r.WithoutMenu()
	}
	return out, nil
}

// GetRestaurant returns the restaurant with its menu attached, or
// domain.ErrRestaurantNotFound.
func (s *CatalogService) GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	r, ok, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("catalog: get restaurant %s: %w", id, err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "Restaurant not found", "restaurantId", id)
		return domain.Restaurant{}, domain.ErrRestaurantNotFound
	}

	r.MenuItems = s.menus.MenuFor(r)
	s.logger.InfoContext(ctx, "Fetched restaurant with menu",
		"restaurantId", id,
		"menuItemCount", len(r.MenuItems),
	)
	return r, nil
}
