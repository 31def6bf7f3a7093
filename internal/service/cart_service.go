package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/cache"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/catalog"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/pricing"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/promo"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/repository"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/shipping"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrProductNotForSale = errors.New("product is not available for sale")
)

// ApplyResult tells the caller whether a promo code was applied and, if not,
// the rejection reason.
type ApplyResult struct {
	Applied        bool    `json:"applied"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

type CartService struct {
	repo     repository.CartRepository
	cache    cache.CartCache
	catalog  catalog.Lookup
	shipping shipping.Provider
	promos   promo.Repository
	now      func() time.Time
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(
	repo repository.CartRepository,
	cartCache cache.CartCache,
	catalogLookup catalog.Lookup,
	shippingProvider shipping.Provider,
	promoRepo promo.Repository,
) *CartService {
	return &CartService{
		repo:     repo,
		cache:    cartCache,
		catalog:  catalogLookup,
		shipping: shippingProvider,
		promos:   promoRepo,
		now:      time.Now,
	}
}

// GetCart reads through the cache. A missing cart comes back as an empty
// cart, never an error.
func (s *CartService) GetCart(ctx context.Context, key domain.CartKey) (*domain.Cart, error) {
	if !key.Valid() {
		return nil, repository.ErrInvalidCartKey
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key.String(), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, key)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, key)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				OwnerKey:   key.String(),
				BuyerID:    key.BuyerID,
				GuestToken: key.GuestToken,
				Items:      nil,
				CreatedAt:  s.now(),
				UpdatedAt:  s.now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), key, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem snapshots the product's current price, title, image and store
// identity onto the cart item. Adding a product already in the cart replaces
// its quantity and refreshes the snapshot.
func (s *CartService) AddItem(ctx context.Context, key domain.CartKey, productID int64, quantity int) error {
	if !key.Valid() {
		return repository.ErrInvalidCartKey
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to look up product %d: %w", productID, err)
	}
	if !product.IsActive() {
		return ErrProductNotForSale
	}

	item := domain.CartItem{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		ProductPrice: product.Price,
		ImageURL:     product.ImageURL,
		StoreID:      product.StoreID,
		StoreName:    product.StoreName,
		Quantity:     quantity,
	}

	if errAdd := s.repo.AddItem(ctx, key, item); errAdd != nil {
		log.Printf("repo add item error: %v \n", errAdd)
		return errAdd
	}

	s.invalidateCache(key)
	return nil
}

// UpdateQuantity changes an item's quantity. Reducing below 1 removes the
// item; a cart item never stores quantity 0.
func (s *CartService) UpdateQuantity(ctx context.Context, key domain.CartKey, productID int64, quantity int) error {
	if !key.Valid() {
		return repository.ErrInvalidCartKey
	}
	if quantity < 1 {
		return s.RemoveItem(ctx, key, productID)
	}

	errUpdate := s.repo.UpdateItemQuantity(ctx, key, productID, quantity)
	if errUpdate != nil {
		log.Printf("repo update item quantity error: %v \n", errUpdate)
		return errUpdate
	}

	s.invalidateCache(key)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, key domain.CartKey, productID int64) error {
	if !key.Valid() {
		return repository.ErrInvalidCartKey
	}

	errRemove := s.repo.RemoveItem(ctx, key, productID)
	if errRemove != nil {
		log.Printf("repo remove item error: %v \n", errRemove)
		return errRemove
	}

	s.invalidateCache(key)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, key domain.CartKey) error {
	if !key.Valid() {
		return repository.ErrInvalidCartKey
	}

	errDelete := s.repo.DeleteCart(ctx, key)
	if errDelete != nil {
		log.Printf("repo delete cart error: %v \n", errDelete)
		return errDelete
	}

	s.invalidateCache(key)
	return nil
}

// GetCartTotals recomputes the full totals view from the cart snapshot, live
// shipping quotes and the cart's stored promo code. Shipping or promo
// failures degrade to totals without that input rather than failing the read.
func (s *CartService) GetCartTotals(ctx context.Context, key domain.CartKey) (domain.CartTotals, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return domain.CartTotals{}, err
	}
	if cart.IsEmpty() {
		return pricing.ComputeTotals(cart, nil, nil), nil
	}

	subtotals := storeSubtotals(cart)
	storeIDs := make([]int64, 0, len(subtotals))
	for storeID := range subtotals {
		storeIDs = append(storeIDs, storeID)
	}

	quotes, errShip := s.shipping.GetShippingCosts(ctx, storeIDs, subtotals)
	if errShip != nil {
		log.Printf("shipping provider error: %v \n", errShip)
		quotes = nil // totals still render, without shipping lines
	}

	discount := s.activeDiscount(ctx, cart, subtotals)

	return pricing.ComputeTotals(cart, quotes, discount), nil
}

// ApplyPromoCode validates a code against the cart and stores it on success.
// Ordinary invalidity is reported as a not-applied outcome with a reason;
// only infrastructure failures return an error.
func (s *CartService) ApplyPromoCode(ctx context.Context, key domain.CartKey, code string) (*ApplyResult, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return &ApplyResult{Reason: promo.ReasonEmptyCart}, nil
	}

	promoCode, errFind := s.promos.FindByCode(ctx, code)
	if errFind != nil {
		if errors.Is(errFind, promo.ErrCodeNotFound) {
			return &ApplyResult{Reason: promo.ReasonNotFound}, nil
		}
		return nil, fmt.Errorf("failed to look up promo code: %w", errFind)
	}

	if ok, reason := promo.Validate(promoCode, s.now()); !ok {
		return &ApplyResult{Reason: reason}, nil
	}

	subtotal, ok := applicableSubtotal(promoCode, storeSubtotals(cart))
	if !ok {
		return &ApplyResult{Reason: promo.ReasonScopeMismatch}, nil
	}
	if !promo.MeetsMinimum(promoCode, subtotal) {
		return &ApplyResult{Reason: promo.ReasonMinimumNotMet}, nil
	}

	if errSet := s.repo.SetPromoCode(ctx, key, promoCode.Code); errSet != nil {
		return nil, fmt.Errorf("failed to store promo code on cart: %w", errSet)
	}
	s.invalidateCache(key)

	return &ApplyResult{
		Applied:        true,
		DiscountAmount: promo.CalculateDiscount(promoCode, subtotal),
	}, nil
}

// activeDiscount re-evaluates the cart's stored code at view time. A code
// that has since expired or been exhausted simply drops out of the totals.
func (s *CartService) activeDiscount(ctx context.Context, cart *domain.Cart, subtotals map[int64]float64) *domain.DiscountInfo {
	if cart.PromoCode == "" {
		return nil
	}

	promoCode, err := s.promos.FindByCode(ctx, cart.PromoCode)
	if err != nil {
		if !errors.Is(err, promo.ErrCodeNotFound) {
			log.Printf("promo lookup error: %v \n", err)
		}
		return nil
	}

	if ok, _ := promo.Validate(promoCode, s.now()); !ok {
		return nil
	}

	subtotal, ok := applicableSubtotal(promoCode, subtotals)
	if !ok || !promo.MeetsMinimum(promoCode, subtotal) {
		return nil
	}

	return &domain.DiscountInfo{
		Amount:      promo.CalculateDiscount(promoCode, subtotal),
		Code:        promoCode.Code,
		Description: promoCode.Description,
	}
}

func (s *CartService) invalidateCache(key domain.CartKey) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, key)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}

func storeSubtotals(cart *domain.Cart) map[int64]float64 {
	subtotals := make(map[int64]float64)
	for _, item := range cart.Items {
		subtotals[item.StoreID] += item.ProductPrice * float64(item.Quantity)
	}
	return subtotals
}

// applicableSubtotal picks the base a code discounts: the whole cart for
// platform codes, the referenced store's subtotal for seller codes. A seller
// code whose store has nothing in the cart is a scope mismatch.
func applicableSubtotal(code *domain.PromoCode, subtotals map[int64]float64) (float64, bool) {
	if code.Scope == domain.ScopeSeller {
		if code.StoreID == nil {
			return 0, false
		}
		subtotal, ok := subtotals[*code.StoreID]
		return subtotal, ok
	}

	var total float64
	for _, subtotal := range subtotals {
		total += subtotal
	}
	return total, true
}
