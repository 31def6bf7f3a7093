package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/catalog"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/repository"
)

// Validator gates checkout initiation by comparing each cart item's snapshot
// against the live catalog. Validation itself is read-only; price
// reconciliation is a separate, explicitly invoked step.
type Validator struct {
	repo          repository.CartRepository
	catalog       catalog.Lookup
	lookupTimeout time.Duration
}

func NewValidator(repo repository.CartRepository, catalogLookup catalog.Lookup) *Validator {
	return &Validator{
		repo:          repo,
		catalog:       catalogLookup,
		lookupTimeout: 5 * time.Second,
	}
}

// ValidateCheckout classifies every cart item independently: unavailable,
// insufficient stock, price changed, or clean. Any issue blocks checkout and
// empties ValidatedItems; clean items carry the live unit price. Catalog
// failures return an error distinct from the business result, so checkout
// fails closed instead of proceeding with unknown state.
func (v *Validator) ValidateCheckout(ctx context.Context, buyerID string) (*domain.CheckoutResult, error) {
	if buyerID == "" {
		return &domain.CheckoutResult{
			Errors: []string{"Buyer id is required"},
		}, nil
	}

	cart, err := v.repo.GetCart(ctx, domain.BuyerKey(buyerID))
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return &domain.CheckoutResult{
			Errors: []string{"Cart is empty"},
		}, nil
	}

	result := &domain.CheckoutResult{}
	var validated []domain.ValidatedCartItem

	for _, item := range cart.Items {
		// An abandoned checkout stops issuing lookups; partial progress is
		// discarded, never partially reported.
		if errCtx := ctx.Err(); errCtx != nil {
			return nil, errCtx
		}

		product, errGet := v.getProduct(ctx, item.ProductID)
		if errGet != nil && !errors.Is(errGet, catalog.ErrProductNotFound) {
			return nil, fmt.Errorf("failed to validate product %d: %w", item.ProductID, errGet)
		}

		if errGet != nil || !product.IsActive() {
			result.StockIssues = append(result.StockIssues, domain.StockIssue{
				ProductID:         item.ProductID,
				ProductTitle:      item.ProductTitle,
				RequestedQuantity: item.Quantity,
				AvailableStock:    0,
				IsUnavailable:     true,
			})
			continue
		}

		if item.Quantity > product.Stock {
			result.StockIssues = append(result.StockIssues, domain.StockIssue{
				ProductID:         item.ProductID,
				ProductTitle:      product.Title,
				RequestedQuantity: item.Quantity,
				AvailableStock:    product.Stock,
				IsUnavailable:     false,
			})
		}

		// Price drift is reported independently of, and alongside, any stock
		// issue for the same item.
		if item.ProductPrice != product.Price {
			result.PriceChanges = append(result.PriceChanges, domain.PriceChangeIssue{
				ProductID:     item.ProductID,
				ProductTitle:  product.Title,
				OriginalPrice: item.ProductPrice,
				CurrentPrice:  product.Price,
			})
		}

		validated = append(validated, domain.ValidatedCartItem{
			ProductID:    product.ID,
			ProductTitle: product.Title,
			StoreID:      product.StoreID,
			StoreName:    product.StoreName,
			UnitPrice:    product.Price,
			Quantity:     item.Quantity,
		})
	}

	if result.HasIssues() {
		return result, nil
	}

	result.OK = true
	result.ValidatedItems = validated
	return result, nil
}

// RefreshCartPricesToCurrent overwrites stale price snapshots with the live
// price for products that are still active, persisting once if anything
// changed. Best-effort: failures are logged and swallowed, and validation
// never calls this implicitly.
func (v *Validator) RefreshCartPricesToCurrent(ctx context.Context, buyerID string) {
	if buyerID == "" {
		return
	}

	key := domain.BuyerKey(buyerID)
	cart, err := v.repo.GetCart(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			log.Printf("price refresh: failed to load cart: %v \n", err)
		}
		return
	}

	changed := false
	now := time.Now()
	for i := range cart.Items {
		item := &cart.Items[i]

		product, errGet := v.getProduct(ctx, item.ProductID)
		if errGet != nil {
			if !errors.Is(errGet, catalog.ErrProductNotFound) {
				log.Printf("price refresh: product %d lookup failed: %v \n", item.ProductID, errGet)
			}
			continue
		}
		if !product.IsActive() || product.Price == item.ProductPrice {
			continue
		}

		item.ProductPrice = product.Price
		item.UpdatedAt = now
		changed = true
	}

	if !changed {
		return
	}

	if errSave := v.repo.UpsertCart(ctx, cart); errSave != nil {
		log.Printf("price refresh: failed to save cart: %v \n", errSave)
	}
}

func (v *Validator) getProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, v.lookupTimeout)
	defer cancel()
	return v.catalog.GetProduct(lookupCtx, productID)
}
