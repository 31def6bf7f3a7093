package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	c "github.com/SebastianDabkowski/mercato-1-sub013/internal/cache"
	"github.com/SebastianDabkowski/mercato-1-sub013/internal/domain"
	p "github.com/SebastianDabkowski/mercato-1-sub013/internal/promo"
	r "github.com/SebastianDabkowski/mercato-1-sub013/internal/repository"
	"github.com/segmentio/kafka-go"
)

// orderConfirmed is the payload published by the order service when a buyer
// confirms an order built from this engine's validated cart.
type orderConfirmed struct {
	BuyerID     string `json:"buyer_id"`
	GuestToken  string `json:"guest_token"`
	PromoCodeID *int64 `json:"promo_code_id"`
}

// Poller consumes order confirmations: it burns one use of the applied promo
// code (conditionally, so capped codes cannot oversell) and clears the
// buyer's cart and cache entry.
type Poller struct {
	repo   r.CartRepository
	promos p.Repository
	cache  c.CartCache
	reader *kafka.Reader
}

func NewPoller(repo r.CartRepository, promos p.Repository, cache c.CartCache, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-confirmed",
		GroupID:  "cart-engine-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo: repo, promos: promos, cache: cache, reader: reader}
}

func (pl *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := pl.reader.ReadMessage(ctx)
		if err != nil {
			fmt.Printf("error reading message: %v\n", err)
			continue
		}
		pl.handleMessage(ctx, m.Value)
	}
}

func (pl *Poller) Close() {
	err := pl.reader.Close()
	if err != nil {
		fmt.Printf("error closing reader: %v\n", err)
	}
}

func (pl *Poller) handleMessage(ctx context.Context, value []byte) {
	var event orderConfirmed
	if errUnmarshal := json.Unmarshal(value, &event); errUnmarshal != nil {
		fmt.Printf("error parsing message: %v\n", errUnmarshal)
		return
	}

	var key domain.CartKey
	switch {
	case event.BuyerID != "":
		key = domain.BuyerKey(event.BuyerID)
	case event.GuestToken != "":
		key = domain.GuestKey(event.GuestToken)
	default:
		fmt.Println("missing buyer_id and guest_token")
		return
	}

	if event.PromoCodeID != nil {
		errInc := pl.promos.IncrementUsage(ctx, *event.PromoCodeID)
		if errInc != nil && !errors.Is(errInc, p.ErrUsageExhausted) {
			fmt.Printf("failed to increment promo usage: %v\n", errInc)
		}
	}

	errDelete := pl.repo.DeleteCart(ctx, key)
	if errDelete != nil && !errors.Is(errDelete, r.ErrCartNotFound) {
		fmt.Printf("failed to delete cart: %v\n", errDelete)
	}

	errCacheDelete := pl.cache.Delete(ctx, key)
	if errCacheDelete != nil {
		fmt.Printf("failed to delete cache: %v\n", errCacheDelete)
	}
}
