package service

import (
	"context"
	"errors"
	"math"
)

const (
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusVoided     = "voided"
)

// ErrPaymentDeclined is returned when the gateway refuses the authorization.
var ErrPaymentDeclined = errors.New("payment declined")

// CardDetails is what the checkout form collects. It is passed to the
// gateway and never persisted.
type CardDetails struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

// PaymentRequest authorizes the grand total of one checkout.
type PaymentRequest struct {
	Reference  string
	Amount     float64
	Currency   string
	CustomerID string
	Email      string
	Card       *CardDetails
	// Token is a gateway-issued payment method id (e.g. a Stripe pm_...).
	Token string
}

type PaymentAuthorization struct {
	ID       string
	Provider string
	Status   string
	Amount   float64
}

// PaymentGatewayService places a hold on the customer's funds before any
// order is written, then captures or voids it once the outcome is known.
type PaymentGatewayService interface {
	Authorize(ctx context.Context, req PaymentRequest) (*PaymentAuthorization, error)
	Capture(ctx context.Context, authorizationID string) error
	Void(ctx context.Context, authorizationID string) error
}

// ToMinorUnits converts an amount to cents, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
