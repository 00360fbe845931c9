package repository

import (
	"context"
	"errors"

	"github.com/yashgautam99/jewellry/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository is the durable store behind the cart. One document per cart,
// keyed by cart id; mutations go through whole-cart upserts so the merge
// semantics live in the domain type, not the storage layer.
type CartRepository interface {
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, cartID string) error
}
