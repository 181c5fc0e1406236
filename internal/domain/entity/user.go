package entity

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
	RoleCSA      = "csa"
)

type User struct {
	ID          string `json:"id" firestore:"id" validate:"required"`
	Email       string `json:"email" firestore:"email" validate:"required,email"`
	DisplayName string `json:"display_name" firestore:"displayName"`
	Phone       string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role        string `json:"role" firestore:"role" validate:"required,oneof=customer vendor admin csa"`

	// VendorName is the storefront name shown on a vendor's products and orders.
	VendorName string `json:"vendor_name,omitempty" firestore:"vendorName,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// IsStaff reports whether the user works the support queue.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleCSA
}
