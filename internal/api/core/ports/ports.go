package ports

import (
	"context"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) domain.Outcome
}

type PaymentService interface {
	Pay(ctx context.Context, req domain.PaymentRequest) domain.PaymentOutcome
}

// LargeOrderCounter counts orders that reach the business stage with more
// than the large-order threshold of units. Implementations must be safe for
// concurrent use.
type LargeOrderCounter interface {
	Add(ctx context.Context)
}

// RestaurantStore is the lookup used by the catalogue endpoints. A missing
// restaurant is reported with ok=false and a nil error.
type RestaurantStore interface {
	GetByID(ctx context.Context, id string) (r domain.Restaurant, ok bool, err error)
	GetAll(ctx context.Context) ([]domain.Restaurant, error)
}

// MenuCatalog resolves the menu served by a restaurant.
type MenuCatalog interface {
	MenuFor(r domain.Restaurant) []domain.MenuItem
}

type CatalogService interface {
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error)
}
