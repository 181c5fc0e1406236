package repository

import (
	"context"

	"vendora/internal/domain/entity"
)

type OrderFilter struct {
	CustomerID string
	VendorID   string
	Status     string
	Limit      int
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// TransitionStatus moves an order to status atomically. check runs
	// against the stored order first and aborts the change on error.
	// Cancelling returns every line item's quantity to stock in the same
	// write.
	TransitionStatus(ctx context.Context, id, status string, check func(order *entity.Order) error) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
}

// StockReservation decrements a product's stock as part of a checkout.
type StockReservation struct {
	ProductID string
	Quantity  int
}

type CheckoutRepository interface {
	// CommitCheckout creates every order and applies every stock
	// reservation atomically. Either all orders exist afterwards or none do.
	CommitCheckout(ctx context.Context, orders []*entity.Order, reservations []StockReservation) error
}
