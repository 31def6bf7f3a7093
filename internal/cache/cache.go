package cache

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, key domain.CartKey) (*domain.Cart, error)
	Set(ctx context.Context, key domain.CartKey, cart *domain.Cart) error
	Delete(ctx context.Context, key domain.CartKey) error
}

var ErrCacheMiss = errors.New("cache miss")
