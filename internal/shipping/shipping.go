package shipping

import (
	"context"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
)

// Provider answers per-store shipping questions for a cart. Stores missing
// from the returned map are treated by the aggregator as "no shipping data",
// so a provider may legitimately answer for a subset of stores.
type Provider interface {
	GetShippingCosts(ctx context.Context, storeIDs []int64, subtotalsByStore map[int64]float64) (map[int64]domain.ShippingQuote, error)
}

// FlatRateProvider charges a flat per-store rate and grants free shipping at
// or above a subtotal threshold. A threshold of 0 disables free shipping.
type FlatRateProvider struct {
	Rate                  float64
	FreeShippingThreshold float64
}

func NewFlatRateProvider(rate, freeShippingThreshold float64) *FlatRateProvider {
	return &FlatRateProvider{
		Rate:                  rate,
		FreeShippingThreshold: freeShippingThreshold,
	}
}

func (p *FlatRateProvider) GetShippingCosts(_ context.Context, storeIDs []int64, subtotalsByStore map[int64]float64) (map[int64]domain.ShippingQuote, error) {
	quotes := make(map[int64]domain.ShippingQuote, len(storeIDs))
	for _, storeID := range storeIDs {
		subtotal := subtotalsByStore[storeID]

		if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
			quotes[storeID] = domain.ShippingQuote{
				ShippingCost:   0,
				IsFreeShipping: true,
			}
			continue
		}

		quote := domain.ShippingQuote{ShippingCost: p.Rate}
		if p.FreeShippingThreshold > 0 {
			quote.AmountToFreeShipping = p.FreeShippingThreshold - subtotal
		}
		quotes[storeID] = quote
	}
	return quotes, nil
}
