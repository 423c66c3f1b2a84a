// Package cart holds the shared cart document and its cache-backed store.
// The cart and checkout services both operate on the same stored document.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/khalidaziz/dukkan/pricing"
)

const keyCart = "cart:%s"

type Item struct {
	ProductID   uuid.UUID       `json:"productId"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	DisplayName string          `json:"name"`
	ImageUrl    string          `json:"image"`
}

// Cart is the persisted cart document. Line items survive with a zero
// quantity after checkout so the summary recomputes to empty without losing
// what the customer had looked at.
type Cart struct {
	UserID    uuid.UUID `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lines maps the document to calculator input. Zero-quantity items pass
// through, the calculator skips them.
func (cart Cart) Lines() []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, pricing.LineItem{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// Empty reports whether the cart holds no purchasable quantity.
func (cart Cart) Empty() bool {
	for _, item := range cart.Items {
		if item.Quantity > 0 {
			return false
		}
	}
	return true
}

type Store struct {
	cache *redis.Client
}

func NewStore(cache *redis.Client) *Store {
	return &Store{cache: cache}
}

func (s *Store) Load(c context.Context, userId uuid.UUID) (Cart, error) {
	raw, err := s.cache.Get(c, fmt.Sprintf(keyCart, userId.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{UserID: userId, Items: []Item{}}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("failed loading cart with error=%w", err)
	}
	cart := Cart{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return Cart{}, fmt.Errorf("failed unmarshaling cart with error=%w", err)
	}
	return cart, nil
}

func (s *Store) Save(c context.Context, cart *Cart) error {
	cart.UpdatedAt = time.Now()
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	err = s.cache.Set(c, fmt.Sprintf(keyCart, cart.UserID.String()), raw, 0).Err()
	if err != nil {
		return fmt.Errorf("failed saving cart with error=%w", err)
	}
	return nil
}

// Zero sets every line item quantity to zero while keeping the entries in
// place. Only the confirmed checkout path calls this.
func (s *Store) Zero(c context.Context, userId uuid.UUID) (Cart, error) {
	cart, err := s.Load(c, userId)
	if err != nil {
		return Cart{}, err
	}
	for i := range cart.Items {
		cart.Items[i].Quantity = 0
	}
	if err := s.Save(c, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func (s *Store) Delete(c context.Context, userId uuid.UUID) error {
	err := s.cache.Del(c, fmt.Sprintf(keyCart, userId.String())).Err()
	if err != nil {
		return fmt.Errorf("failed deleting cart with error=%w", err)
	}
	return nil
}
