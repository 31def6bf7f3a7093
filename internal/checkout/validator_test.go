package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/catalog"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	r "github.com/SebastianDabkowski/mercato-1-sub013/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m        sync.RWMutex
	cart     *domain.Cart
	err      error
	saved    *domain.Cart
	saveErr  error
	saveHits int
}

func (m *mockRepository) GetCart(context.Context, domain.CartKey) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, r.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saveHits++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = cart
	return nil
}

func (m *mockRepository) AddItem(context.Context, domain.CartKey, domain.CartItem) error {
	return nil
}

func (m *mockRepository) UpdateItemQuantity(context.Context, domain.CartKey, int64, int) error {
	return nil
}

func (m *mockRepository) RemoveItem(context.Context, domain.CartKey, int64) error {
	return nil
}

func (m *mockRepository) DeleteCart(context.Context, domain.CartKey) error {
	return nil
}

func (m *mockRepository) SetPromoCode(context.Context, domain.CartKey, string) error {
	return nil
}

type mockCatalog struct {
	products map[int64]*domain.Product
	err      error
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	product, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

func cartWith(items ...domain.CartItem) *domain.Cart {
	return &domain.Cart{
		BuyerID:  "buyer1",
		OwnerKey: "buyer:buyer1",
		Items:    items,
	}
}

func TestValidateCheckout_EmptyBuyerID(t *testing.T) {
	v := NewValidator(&mockRepository{}, &mockCatalog{})

	result, err := v.ValidateCheckout(context.Background(), "")

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Errors, "Buyer id is required")
}

func TestValidateCheckout_MissingCart(t *testing.T) {
	v := NewValidator(&mockRepository{}, &mockCatalog{})

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Errors, "Cart is empty")
}

func TestValidateCheckout_EmptyCart(t *testing.T) {
	repo := &mockRepository{cart: cartWith()}
	v := NewValidator(repo, &mockCatalog{})

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	assert.Contains(t, result.Errors, "Cart is empty")
}

func TestValidateCheckout_CleanCartUsesLivePrices(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductTitle: "Mug", ProductPrice: 10.00, StoreID: 1, StoreName: "Acme", Quantity: 2},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Title: "Mug", Price: 10.00, Stock: 5, StoreID: 1, StoreName: "Acme", Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.StockIssues)
	assert.Empty(t, result.PriceChanges)
	require.Len(t, result.ValidatedItems, 1)
	assert.InDelta(t, 10.00, result.ValidatedItems[0].UnitPrice, 0.001)
	assert.Equal(t, 2, result.ValidatedItems[0].Quantity)
	assert.Equal(t, "Acme", result.ValidatedItems[0].StoreName)
}

func TestValidateCheckout_PriceDriftBlocksCheckout(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductTitle: "Mug", ProductPrice: 10.00, Quantity: 1},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Title: "Mug", Price: 12.00, Stock: 5, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	assert.False(t, result.OK)
	require.Len(t, result.PriceChanges, 1)
	assert.InDelta(t, 10.00, result.PriceChanges[0].OriginalPrice, 0.001)
	assert.InDelta(t, 12.00, result.PriceChanges[0].CurrentPrice, 0.001)
	assert.Empty(t, result.ValidatedItems)
}

func TestValidateCheckout_InsufficientStock(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductTitle: "Mug", ProductPrice: 10.00, Quantity: 5},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Title: "Mug", Price: 10.00, Stock: 2, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	assert.False(t, result.OK)
	require.Len(t, result.StockIssues, 1)
	assert.Equal(t, 5, result.StockIssues[0].RequestedQuantity)
	assert.Equal(t, 2, result.StockIssues[0].AvailableStock)
	assert.False(t, result.StockIssues[0].IsUnavailable)
}

func TestValidateCheckout_ProductGone(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 99, ProductTitle: "Ghost", ProductPrice: 10.00, Quantity: 1},
	)}
	v := NewValidator(repo, &mockCatalog{products: map[int64]*domain.Product{}})

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	require.Len(t, result.StockIssues, 1)
	assert.True(t, result.StockIssues[0].IsUnavailable)
	assert.Zero(t, result.StockIssues[0].AvailableStock)
	assert.Equal(t, "Ghost", result.StockIssues[0].ProductTitle)
}

func TestValidateCheckout_InactiveProductIsUnavailable(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductTitle: "Mug", ProductPrice: 10.00, Quantity: 1},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Title: "Mug", Price: 10.00, Stock: 5, Status: domain.ProductStatusInactive},
	}}
	v := NewValidator(repo, cat)

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	require.Len(t, result.StockIssues, 1)
	assert.True(t, result.StockIssues[0].IsUnavailable)
}

func TestValidateCheckout_PriceAndStockIssuesReportedTogether(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductTitle: "Mug", ProductPrice: 10.00, Quantity: 5},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Title: "Mug", Price: 12.00, Stock: 2, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	require.NoError(t, err)
	assert.Len(t, result.StockIssues, 1)
	assert.Len(t, result.PriceChanges, 1)
	assert.Empty(t, result.ValidatedItems)
}

func TestValidateCheckout_CatalogFailureFailsClosed(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductPrice: 10.00, Quantity: 1},
	)}
	v := NewValidator(repo, &mockCatalog{err: errors.New("catalog unreachable")})

	result, err := v.ValidateCheckout(context.Background(), "buyer1")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestValidateCheckout_CanceledContextStopsLookups(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductPrice: 10.00, Quantity: 1},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Price: 10.00, Stock: 5, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := v.ValidateCheckout(ctx, "buyer1")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRefreshCartPrices_UpdatesStaleSnapshots(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductTitle: "Mug", ProductPrice: 10.00, Quantity: 1},
		domain.CartItem{ProductID: 2, ProductTitle: "Hat", ProductPrice: 8.00, Quantity: 1},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Title: "Mug", Price: 12.00, Stock: 5, Status: domain.ProductStatusActive},
		2: {ID: 2, Title: "Hat", Price: 8.00, Stock: 5, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	v.RefreshCartPricesToCurrent(context.Background(), "buyer1")

	require.NotNil(t, repo.saved)
	assert.InDelta(t, 12.00, repo.saved.Items[0].ProductPrice, 0.001)
	assert.InDelta(t, 8.00, repo.saved.Items[1].ProductPrice, 0.001)
	assert.Equal(t, 1, repo.saveHits)
}

func TestRefreshCartPrices_NoChangeSkipsPersist(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductPrice: 10.00, Quantity: 1},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Price: 10.00, Stock: 5, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	v.RefreshCartPricesToCurrent(context.Background(), "buyer1")

	assert.Zero(t, repo.saveHits)
}

func TestRefreshCartPrices_InactiveProductLeftAlone(t *testing.T) {
	repo := &mockRepository{cart: cartWith(
		domain.CartItem{ProductID: 1, ProductPrice: 10.00, Quantity: 1},
	)}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Price: 15.00, Stock: 5, Status: domain.ProductStatusInactive},
	}}
	v := NewValidator(repo, cat)

	v.RefreshCartPricesToCurrent(context.Background(), "buyer1")

	assert.Zero(t, repo.saveHits)
}

func TestRefreshCartPrices_SwallowsFailures(t *testing.T) {
	repo := &mockRepository{
		cart: cartWith(
			domain.CartItem{ProductID: 1, ProductPrice: 10.00, Quantity: 1},
		),
		saveErr: errors.New("mongo down"),
	}
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Price: 12.00, Stock: 5, Status: domain.ProductStatusActive},
	}}
	v := NewValidator(repo, cat)

	// Must not panic or propagate anything.
	v.RefreshCartPricesToCurrent(context.Background(), "buyer1")
	assert.Equal(t, 1, repo.saveHits)
}
