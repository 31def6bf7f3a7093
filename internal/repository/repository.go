package repository

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
)

var (
	ErrCartNotFound   = errors.New("cart not found")
	ErrItemNotFound   = errors.New("item not found in cart")
	ErrInvalidCartKey = errors.New("cart key must set exactly one of buyer id or guest token")
)

// CartRepository owns Cart and CartItem lifecycle. Each call is a single
// logical transaction; write serialization per cart key happens here, not in
// the services above.
type CartRepository interface {
	GetCart(ctx context.Context, key domain.CartKey) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	AddItem(ctx context.Context, key domain.CartKey, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, key domain.CartKey, productID int64, quantity int) error
	RemoveItem(ctx context.Context, key domain.CartKey, productID int64) error
	DeleteCart(ctx context.Context, key domain.CartKey) error
	SetPromoCode(ctx context.Context, key domain.CartKey, code string) error
}
