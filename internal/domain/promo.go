package domain

import "time"

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "PERCENTAGE"
	DiscountFixed      DiscountKind = "FIXED"
)

type PromoScope string

const (
	// ScopePlatform discounts the whole cart subtotal.
	ScopePlatform PromoScope = "PLATFORM"
	// ScopeSeller discounts a single store's subtotal only.
	ScopeSeller PromoScope = "SELLER"
)

// PromoCode is read-only inside the engine except for the usage counter,
// which is incremented at order confirmation through a conditional update.
type PromoCode struct {
	ID                 int64
	Code               string
	Description        string
	Kind               DiscountKind
	Value              float64
	MinimumOrderAmount *float64
	MaxDiscountAmount  *float64
	Scope              PromoScope
	StoreID            *int64
	StartsAt           time.Time
	EndsAt             *time.Time
	UsageLimit         *int
	UsageCount         int
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// String representation (for logging)
func (k DiscountKind) String() string {
	return string(k)
}

func (s PromoScope) String() string {
	return string(s)
}
