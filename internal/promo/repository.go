package promo

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
)

var (
	ErrCodeNotFound   = errors.New("promo code not found")
	ErrUsageExhausted = errors.New("promo code usage limit reached")
)

// Repository reads promo codes and owns the single mutation this engine's
// callers trigger: the usage-count increment at order confirmation.
type Repository interface {
	// FindByCode looks a code up case-insensitively.
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)

	// IncrementUsage bumps the usage counter only while it is still under the
	// configured limit, as one atomic conditional update. Returns
	// ErrUsageExhausted when the guard fails, so a capped promotion cannot be
	// oversold under concurrent checkouts.
	IncrementUsage(ctx context.Context, id int64) error
}
