package domain

// ShippingQuote is what the shipping cost provider reports for one store.
type ShippingQuote struct {
	ShippingCost         float64 `json:"shipping_cost"`
	IsFreeShipping       bool    `json:"is_free_shipping"`
	AmountToFreeShipping float64 `json:"amount_to_free_shipping"`
}

// StoreTotals is the per-store line of the cart breakdown.
type StoreTotals struct {
	StoreID              int64   `json:"store_id"`
	StoreName            string  `json:"store_name"`
	Subtotal             float64 `json:"subtotal"`
	ShippingCost         float64 `json:"shipping_cost"`
	IsFreeShipping       bool    `json:"is_free_shipping"`
	AmountToFreeShipping float64 `json:"amount_to_free_shipping"`
	Total                float64 `json:"total"`
}

// DiscountInfo describes an already-computed discount to fold into totals.
type DiscountInfo struct {
	Amount      float64 `json:"amount"`
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
}

// CartTotals is a derived projection, recomputed on every read and never
// persisted. The discount is reported separately and deducted from the grand
// total only, so callers can render subtotal - discount + shipping = total
// without re-deriving it.
type CartTotals struct {
	Stores           []StoreTotals `json:"stores"`
	ItemsSubtotal    float64       `json:"items_subtotal"`
	ShippingSubtotal float64       `json:"shipping_subtotal"`
	DiscountAmount   float64       `json:"discount_amount"`
	GrandTotal       float64       `json:"grand_total"`
	ItemCount        int           `json:"item_count"`
	PromoCode        string        `json:"promo_code,omitempty"`
	PromoDescription string        `json:"promo_description,omitempty"`
}
