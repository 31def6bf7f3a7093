package promo

import (
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func timePtr(t time.Time) *time.Time {
	return &t
}

func activeCode() *domain.PromoCode {
	return &domain.PromoCode{
		ID:       1,
		Code:     "SAVE10",
		Kind:     domain.DiscountPercentage,
		Value:    10,
		Scope:    domain.ScopePlatform,
		StartsAt: time.Now().Add(-24 * time.Hour),
		Active:   true,
	}
}

func TestValidate_ActiveCode(t *testing.T) {
	ok, reason := Validate(activeCode(), time.Now())

	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestValidate_InactiveCode(t *testing.T) {
	code := activeCode()
	code.Active = false

	ok, reason := Validate(code, time.Now())

	assert.False(t, ok)
	assert.Equal(t, ReasonInactive, reason)
}

func TestValidate_NotYetStarted(t *testing.T) {
	code := activeCode()
	code.StartsAt = time.Now().Add(time.Hour)

	ok, reason := Validate(code, time.Now())

	assert.False(t, ok)
	assert.Equal(t, ReasonNotYetStarted, reason)
}

func TestValidate_Expired(t *testing.T) {
	code := activeCode()
	code.EndsAt = timePtr(time.Now().Add(-time.Minute))

	ok, reason := Validate(code, time.Now())

	assert.False(t, ok)
	assert.Equal(t, ReasonExpired, reason)
}

func TestValidate_NoEndDateNeverExpires(t *testing.T) {
	code := activeCode()
	code.StartsAt = time.Now().Add(-10 * 365 * 24 * time.Hour)

	ok, _ := Validate(code, time.Now())

	assert.True(t, ok)
}

func TestValidate_UsageExhausted(t *testing.T) {
	code := activeCode()
	code.UsageLimit = intPtr(5)
	code.UsageCount = 5

	ok, reason := Validate(code, time.Now())

	assert.False(t, ok)
	assert.Equal(t, ReasonUsageExceeded, reason)
}

func TestValidate_UsageUnderLimit(t *testing.T) {
	code := activeCode()
	code.UsageLimit = intPtr(5)
	code.UsageCount = 4

	ok, _ := Validate(code, time.Now())

	assert.True(t, ok)
}

func TestMeetsMinimum_NoMinimumConfigured(t *testing.T) {
	assert.True(t, MeetsMinimum(activeCode(), 0.01))
}

func TestMeetsMinimum_Boundary(t *testing.T) {
	code := activeCode()
	code.MinimumOrderAmount = floatPtr(50)

	assert.True(t, MeetsMinimum(code, 50))
	assert.False(t, MeetsMinimum(code, 49.99))
}

func TestCalculateDiscount_Percentage(t *testing.T) {
	code := activeCode() // 10%

	assert.InDelta(t, 7.55, CalculateDiscount(code, 75.50), 0.0001)
}

func TestCalculateDiscount_PercentageCappedAtMax(t *testing.T) {
	code := activeCode()
	code.Value = 50
	code.MaxDiscountAmount = floatPtr(20)

	// 50% of $500 would be $250; the cap wins.
	assert.InDelta(t, 20.00, CalculateDiscount(code, 500), 0.0001)
}

func TestCalculateDiscount_PercentageUnderCapUnaffected(t *testing.T) {
	code := activeCode()
	code.Value = 10
	code.MaxDiscountAmount = floatPtr(20)

	assert.InDelta(t, 5.00, CalculateDiscount(code, 50), 0.0001)
}

func TestCalculateDiscount_FixedAmount(t *testing.T) {
	code := activeCode()
	code.Kind = domain.DiscountFixed
	code.Value = 5

	assert.InDelta(t, 5.00, CalculateDiscount(code, 70), 0.0001)
}

func TestCalculateDiscount_ClampedToSubtotal(t *testing.T) {
	code := activeCode()
	code.Kind = domain.DiscountFixed
	code.Value = 50

	// A discount can never produce a net credit.
	assert.InDelta(t, 12.30, CalculateDiscount(code, 12.30), 0.0001)
}

func TestCalculateDiscount_NeverExceedsSubtotal(t *testing.T) {
	subtotals := []float64{0.01, 1, 9.99, 100, 12345.67}
	code := activeCode()
	code.Value = 100 // 100%

	for _, subtotal := range subtotals {
		assert.LessOrEqual(t, CalculateDiscount(code, subtotal), subtotal)
	}
}

func TestCalculateDiscount_ZeroSubtotal(t *testing.T) {
	assert.Zero(t, CalculateDiscount(activeCode(), 0))
}

func TestCalculateDiscount_RoundsHalfAwayFromZero(t *testing.T) {
	code := activeCode()
	code.Value = 12.5 // 12.5% of $1.00 = $0.125

	// Pinned rounding mode: half away from zero, so $0.125 -> $0.13.
	assert.InDelta(t, 0.13, CalculateDiscount(code, 1.00), 0.0001)
}

func TestCalculateDiscount_RoundsToTwoDecimals(t *testing.T) {
	code := activeCode()
	code.Value = 10

	// 10% of $33.33 = $3.333 -> $3.33
	assert.InDelta(t, 3.33, CalculateDiscount(code, 33.33), 0.0001)
}
