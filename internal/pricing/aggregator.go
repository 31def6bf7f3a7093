package pricing

import (
	"sort"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
)

// ComputeTotals turns a raw cart plus optional shipping and discount inputs
// into a single CartTotals view. Pure: no I/O, no side effects, deterministic
// for the same inputs.
//
// Subtotals use each item's snapshot price, never a live lookup. Stores with
// no entry in shippingByStore get a zero shipping line, so the view degrades
// gracefully when the shipping provider returns nothing. The discount is
// deducted from the grand total only; per-store lines and the items subtotal
// are never touched by it.
func ComputeTotals(cart *domain.Cart, shippingByStore map[int64]domain.ShippingQuote, discount *domain.DiscountInfo) domain.CartTotals {
	totals := domain.CartTotals{
		Stores: []domain.StoreTotals{},
	}

	if cart.IsEmpty() {
		return totals
	}

	// Keyed on (id, name): items whose snapshot still carries an old store
	// name stay visible as their own line instead of adopting the first-seen
	// name.
	type storeKey struct {
		id   int64
		name string
	}
	groups := make(map[storeKey]*domain.StoreTotals)
	for _, item := range cart.Items {
		k := storeKey{id: item.StoreID, name: item.StoreName}
		group, ok := groups[k]
		if !ok {
			group = &domain.StoreTotals{
				StoreID:   item.StoreID,
				StoreName: item.StoreName,
			}
			groups[k] = group
		}
		group.Subtotal += item.ProductPrice * float64(item.Quantity)
		totals.ItemCount += item.Quantity
	}

	for k, group := range groups {
		if quote, ok := shippingByStore[k.id]; ok {
			group.ShippingCost = quote.ShippingCost
			group.IsFreeShipping = quote.IsFreeShipping
			group.AmountToFreeShipping = quote.AmountToFreeShipping
		}
		group.Total = group.Subtotal + group.ShippingCost

		totals.ItemsSubtotal += group.Subtotal
		totals.ShippingSubtotal += group.ShippingCost
		totals.Stores = append(totals.Stores, *group)
	}

	// Alphabetical by store name, store id as tie-breaker, so the breakdown
	// is stable for callers and tests.
	sort.Slice(totals.Stores, func(i, j int) bool {
		if totals.Stores[i].StoreName != totals.Stores[j].StoreName {
			return totals.Stores[i].StoreName < totals.Stores[j].StoreName
		}
		return totals.Stores[i].StoreID < totals.Stores[j].StoreID
	})

	totals.GrandTotal = totals.ItemsSubtotal + totals.ShippingSubtotal

	if discount != nil {
		totals.DiscountAmount = discount.Amount
		totals.PromoCode = discount.Code
		totals.PromoDescription = discount.Description
		totals.GrandTotal -= discount.Amount
	}

	return totals
}
