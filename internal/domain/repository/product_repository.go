package repository

import (
	"context"

	"vendora/internal/domain/entity"
)

type ProductFilter struct {
	VendorID string
	Category string
	Status   string
	Featured bool
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
