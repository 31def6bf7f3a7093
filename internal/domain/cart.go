package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartKey identifies a cart by exactly one of a buyer id (authenticated
// customer) or a guest token (anonymous cookie). Never both.
type CartKey struct {
	BuyerID    string
	GuestToken string
}

func BuyerKey(buyerID string) CartKey {
	return CartKey{BuyerID: buyerID}
}

func GuestKey(token string) CartKey {
	return CartKey{GuestToken: token}
}

// NewGuestKey mints a fresh guest cart key.
func NewGuestKey() CartKey {
	return CartKey{GuestToken: uuid.NewString()}
}

func (k CartKey) Valid() bool {
	return (k.BuyerID == "") != (k.GuestToken == "")
}

func (k CartKey) IsGuest() bool {
	return k.GuestToken != ""
}

// String returns the storage key for this cart owner.
func (k CartKey) String() string {
	if k.BuyerID != "" {
		return "buyer:" + k.BuyerID
	}
	return "guest:" + k.GuestToken
}

type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerKey   string     `bson:"owner_key" json:"owner_key"`
	BuyerID    string     `bson:"buyer_id,omitempty" json:"buyer_id,omitempty"`
	GuestToken string     `bson:"guest_token,omitempty" json:"guest_token,omitempty"`
	Items      []CartItem `bson:"items" json:"items"`
	PromoCode  string     `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartItem carries a price snapshot captured when the item was added or last
// refreshed. It is deliberately decoupled from live catalog state so price
// drift can be detected at checkout instead of silently applied.
type CartItem struct {
	ProductID    int64     `bson:"product_id" json:"product_id"`
	ProductTitle string    `bson:"product_title" json:"product_title"`
	ProductPrice float64   `bson:"product_price" json:"product_price"`
	ImageURL     string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	StoreID      int64     `bson:"store_id" json:"store_id"`
	StoreName    string    `bson:"store_name" json:"store_name"`
	Quantity     int       `bson:"quantity" json:"quantity"`
	AddedAt      time.Time `bson:"added_at" json:"added_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func (c *Cart) Key() CartKey {
	if c.BuyerID != "" {
		return BuyerKey(c.BuyerID)
	}
	return GuestKey(c.GuestToken)
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the cart item for the given product, or nil.
func (c *Cart) Item(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// TotalQuantity sums quantities across all items, not distinct item count.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
