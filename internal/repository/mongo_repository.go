package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, key domain.CartKey) (*domain.Cart, error) {
	if !key.Valid() {
		return nil, ErrInvalidCartKey
	}

	var cart domain.Cart
	err := m.collection.FindOne(ctx, ownerFilter(key)).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	key := cart.Key()
	if !key.Valid() {
		return ErrInvalidCartKey
	}

	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	cart.OwnerKey = key.String()

	update := bson.M{"$set": cart}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, ownerFilter(key), update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) AddItem(ctx context.Context, key domain.CartKey, item domain.CartItem) error {
	if !key.Valid() {
		return ErrInvalidCartKey
	}

	now := time.Now()
	item.AddedAt = now
	item.UpdatedAt = now

	filter := ownerFilter(key)

	var existingCart domain.Cart
	err := m.collection.FindOne(ctx, filter).Decode(&existingCart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// First add-to-cart creates the cart.
			cart := &domain.Cart{
				OwnerKey:   key.String(),
				BuyerID:    key.BuyerID,
				GuestToken: key.GuestToken,
				Items:      []domain.CartItem{item},
				CreatedAt:  now,
				UpdatedAt:  now,
			}

			_, err = m.collection.InsertOne(ctx, cart)
			if err != nil {
				return fmt.Errorf("failed to create cart with item: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing cart: %w", err)
	}

	// At most one item per product: a duplicate add replaces the quantity and
	// refreshes the price snapshot instead of appending a second line.
	if existingCart.Item(item.ProductID) != nil {
		update := bson.M{
			"$set": bson.M{
				"items.$[elem].quantity":      item.Quantity,
				"items.$[elem].product_price": item.ProductPrice,
				"items.$[elem].product_title": item.ProductTitle,
				"items.$[elem].image_url":     item.ImageURL,
				"items.$[elem].updated_at":    now,
				"updated_at":                  now,
			},
		}
		arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.product_id": item.ProductID},
			},
		})

		_, err = m.collection.UpdateOne(ctx, filter, update, arrayFilters)
		if err != nil {
			return fmt.Errorf("failed to update existing item: %w", err)
		}
		return nil
	}

	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": now},
	}

	_, err = m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add new item: %w", err)
	}

	return nil
}

func (m *mongoRepository) UpdateItemQuantity(ctx context.Context, key domain.CartKey, productID int64, quantity int) error {
	if !key.Valid() {
		return ErrInvalidCartKey
	}

	filter := ownerFilter(key)
	filter["items.product_id"] = productID

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity":   quantity,
			"items.$[elem].updated_at": time.Now(),
			"updated_at":               time.Now(),
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.product_id": productID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *mongoRepository) RemoveItem(ctx context.Context, key domain.CartKey, productID int64) error {
	if !key.Valid() {
		return ErrInvalidCartKey
	}

	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, ownerFilter(key), update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, key domain.CartKey) error {
	if !key.Valid() {
		return ErrInvalidCartKey
	}

	result, err := m.collection.DeleteOne(ctx, ownerFilter(key))
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) SetPromoCode(ctx context.Context, key domain.CartKey, code string) error {
	if !key.Valid() {
		return ErrInvalidCartKey
	}

	update := bson.M{
		"$set": bson.M{
			"promo_code": code,
			"updated_at": time.Now(),
		},
	}

	result, err := m.collection.UpdateOne(ctx, ownerFilter(key), update)
	if err != nil {
		return fmt.Errorf("failed to set promo code: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Guest carts expire after 30 days of inactivity; buyer carts are
			// kept until explicitly cleared.
			Keys: bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(30 * 24 * 60 * 60).
				SetPartialFilterExpression(bson.M{"guest_token": bson.M{"$exists": true}}),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// EnsureIndexes prepares the carts collection. Called once at boot.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	repo := &mongoRepository{collection: db.Collection("carts")}
	return repo.CreateIndexes(ctx)
}

func ownerFilter(key domain.CartKey) bson.M {
	return bson.M{"owner_key": key.String()}
}
