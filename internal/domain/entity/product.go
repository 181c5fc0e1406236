package entity

import (
	"time"
)

const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

type Product struct {
	ID          string   `json:"id" firestore:"id" validate:"required"`
	Title       string   `json:"title" firestore:"title" validate:"required"`
	Description string   `json:"description" firestore:"description"`
	Price       float64  `json:"price" firestore:"price" validate:"gt=0"`
	Category    string   `json:"category" firestore:"category" validate:"required"`
	Images      []string `json:"images" firestore:"images"`
	VendorID    string   `json:"vendor_id" firestore:"vendorId" validate:"required"`
	VendorName  string   `json:"vendor_name" firestore:"vendorName"`
	Stock       int      `json:"stock" firestore:"stock" validate:"gte=0"`
	SKU         string   `json:"sku,omitempty" firestore:"sku,omitempty"`
	Featured    bool     `json:"featured" firestore:"featured"`
	Status      string   `json:"status" firestore:"status" validate:"required,oneof=active inactive out_of_stock"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// DeriveStatus recomputes Status from Stock. A vendor-deactivated product
// stays inactive while it still has stock.
func (p *Product) DeriveStatus() {
	switch {
	case p.Stock <= 0:
		p.Status = ProductStatusOutOfStock
	case p.Status == ProductStatusInactive:
	default:
		p.Status = ProductStatusActive
	}
}

func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive && p.Stock > 0
}

// PrimaryImage is the image shown on cart lines.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
