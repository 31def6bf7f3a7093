package promo

import (
	"time"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	"github.com/shopspring/decimal"
)

// Rejection reasons surfaced to the caller when a code cannot be applied.
// Ordinary invalidity is never an error, always a classified outcome.
const (
	ReasonNotFound      = "not_found"
	ReasonInactive      = "inactive"
	ReasonNotYetStarted = "not_yet_started"
	ReasonExpired       = "expired"
	ReasonUsageExceeded = "usage_exhausted"
	ReasonMinimumNotMet = "minimum_not_met"
	ReasonScopeMismatch = "scope_mismatch"
	ReasonEmptyCart     = "empty_cart"
)

// Validate checks pure validity at the given instant, ignoring amounts.
// Returns false with a rejection reason, or true with an empty reason.
func Validate(code *domain.PromoCode, now time.Time) (bool, string) {
	if !code.Active {
		return false, ReasonInactive
	}
	if now.Before(code.StartsAt) {
		return false, ReasonNotYetStarted
	}
	if code.EndsAt != nil && now.After(*code.EndsAt) {
		return false, ReasonExpired
	}
	if code.UsageLimit != nil && code.UsageCount >= *code.UsageLimit {
		return false, ReasonUsageExceeded
	}
	return true, ""
}

// MeetsMinimum reports whether the order amount satisfies the code's minimum.
// Codes without a configured minimum always pass.
func MeetsMinimum(code *domain.PromoCode, orderAmount float64) bool {
	if code.MinimumOrderAmount == nil {
		return true
	}
	return orderAmount >= *code.MinimumOrderAmount
}

// CalculateDiscount computes the discount amount for the given subtotal.
//
// Scope enforcement is the caller's job: for a seller-scoped code the
// subtotal passed in must be that seller's store subtotal, not the whole
// cart. The result is capped at MaxDiscountAmount for percentage codes,
// clamped to the subtotal in both kinds, and rounded to 2 decimal places
// half away from zero.
func CalculateDiscount(code *domain.PromoCode, subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}

	sub := decimal.NewFromFloat(subtotal)
	var amount decimal.Decimal

	switch code.Kind {
	case domain.DiscountPercentage:
		amount = sub.Mul(decimal.NewFromFloat(code.Value)).Div(decimal.NewFromInt(100))
		if code.MaxDiscountAmount != nil {
			cap := decimal.NewFromFloat(*code.MaxDiscountAmount)
			if amount.GreaterThan(cap) {
				amount = cap
			}
		}
	case domain.DiscountFixed:
		amount = decimal.NewFromFloat(code.Value)
	default:
		return 0
	}

	// A discount can never exceed what it discounts.
	if amount.GreaterThan(sub) {
		amount = sub
	}
	if amount.IsNegative() {
		return 0
	}

	result, _ := amount.Round(2).Float64()
	return result
}
