package catalog

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Lookup reads live product state. The catalog service is the single source
// of truth for price and stock; cart items only hold snapshots of it.
type Lookup interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}
