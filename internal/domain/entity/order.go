package entity

import (
	"time"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentMethodCard = "card"
	PaymentMethodCOD  = "cod"
)

type OrderLineItem struct {
	ProductID string  `json:"product_id" firestore:"productId" validate:"required"`
	Title     string  `json:"title" firestore:"title"`
	Quantity  int     `json:"quantity" firestore:"quantity" validate:"gte=1"`
	Price     float64 `json:"price" firestore:"price" validate:"gt=0"`
}

type ShippingAddress struct {
	FirstName string `json:"first_name" firestore:"firstName" validate:"required"`
	LastName  string `json:"last_name" firestore:"lastName" validate:"required"`
	Email     string `json:"email" firestore:"email" validate:"required"`
	Phone     string `json:"phone" firestore:"phone" validate:"required"`
	Address   string `json:"address" firestore:"address" validate:"required"`
	City      string `json:"city" firestore:"city" validate:"required"`
	State     string `json:"state" firestore:"state" validate:"required"`
	ZipCode   string `json:"zip_code" firestore:"zipCode" validate:"required"`
	Country   string `json:"country" firestore:"country" validate:"required"`
}

type Order struct {
	ID              string          `json:"id" firestore:"id" validate:"required"`
	CheckoutID      string          `json:"checkout_id" firestore:"checkoutId"`
	CustomerID      string          `json:"customer_id" firestore:"customerId" validate:"required"`
	VendorID        string          `json:"vendor_id" firestore:"vendorId" validate:"required"`
	VendorName      string          `json:"vendor_name" firestore:"vendorName"`
	LineItems       []OrderLineItem `json:"line_items" firestore:"lineItems" validate:"required,min=1,dive"`
	TotalAmount     float64         `json:"total_amount" firestore:"totalAmount" validate:"gt=0"`
	Status          string          `json:"status" firestore:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	ShippingAddress ShippingAddress `json:"shipping_address" firestore:"shippingAddress"`
	PaymentMethod   string          `json:"payment_method" firestore:"paymentMethod" validate:"required,oneof=card cod"`
	PaymentRef      string          `json:"payment_reference,omitempty" firestore:"paymentReference,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionOrder reports whether an order may move from one status to
// another. Delivered and cancelled are terminal.
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
