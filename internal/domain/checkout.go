package domain

// StockIssue reports a cart item that cannot be fulfilled as requested.
// When the product is gone or inactive, AvailableStock is 0 and IsUnavailable
// is set; otherwise AvailableStock carries the live stock so the caller can
// offer "reduce to available amount".
type StockIssue struct {
	ProductID         int64  `json:"product_id"`
	ProductTitle      string `json:"product_title"`
	RequestedQuantity int    `json:"requested_quantity"`
	AvailableStock    int    `json:"available_stock"`
	IsUnavailable     bool   `json:"is_unavailable"`
}

// PriceChangeIssue reports drift between a cart item's price snapshot and the
// live catalog price. Reported alongside any stock issue for the same item.
type PriceChangeIssue struct {
	ProductID     int64   `json:"product_id"`
	ProductTitle  string  `json:"product_title"`
	OriginalPrice float64 `json:"original_price"`
	CurrentPrice  float64 `json:"current_price"`
}

// ValidatedCartItem carries the live unit price, never the stale snapshot:
// once validation passes, checkout charges today's price.
type ValidatedCartItem struct {
	ProductID    int64   `json:"product_id"`
	ProductTitle string  `json:"product_title"`
	StoreID      int64   `json:"store_id"`
	StoreName    string  `json:"store_name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// CheckoutResult is all-or-nothing at the outcome level: any issue blocks
// checkout and ValidatedItems stays empty, though each issue is item-scoped
// for display.
type CheckoutResult struct {
	OK             bool                `json:"ok"`
	Errors         []string            `json:"errors,omitempty"`
	StockIssues    []StockIssue        `json:"stock_issues,omitempty"`
	PriceChanges   []PriceChangeIssue  `json:"price_changes,omitempty"`
	ValidatedItems []ValidatedCartItem `json:"validated_items,omitempty"`
}

func (r *CheckoutResult) HasIssues() bool {
	return len(r.Errors) > 0 || len(r.StockIssues) > 0 || len(r.PriceChanges) > 0
}
