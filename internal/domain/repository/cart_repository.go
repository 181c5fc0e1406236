package repository

import (
	"context"

	"vendora/internal/domain/entity"
)

// CartRepository stores one line-item list per owner. Authenticated and
// guest carts live in separate collections behind the same contract.
type CartRepository interface {
	// GetItems returns the stored lines, or an empty list when the owner has no cart.
	GetItems(ctx context.Context, ownerID string) ([]entity.CartItem, error)
	// SaveItems overwrites the whole list.
	SaveItems(ctx context.Context, ownerID string, items []entity.CartItem) error
	Delete(ctx context.Context, ownerID string) error
}
