package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

// StripePaymentService authorizes with a manual-capture PaymentIntent so the
// funds are only taken after the orders are committed.
type StripePaymentService struct {
	api      *client.API
	currency string
	logger   *zap.Logger
}

func NewStripePaymentService(secretKey, currency string, logger *zap.Logger) *StripePaymentService {
	api := &client.API{}
	api.Init(secretKey, nil)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripePaymentService{
		api:      api,
		currency: strings.ToLower(currency),
		logger:   logger,
	}
}

func (s *StripePaymentService) Authorize(ctx context.Context, req PaymentRequest) (*PaymentAuthorization, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, fmt.Errorf("stripe: payment method token is required")
	}
	currency := s.currency
	if req.Currency != "" {
		currency = strings.ToLower(req.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(ToMinorUnits(req.Amount)),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(req.Token),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String("Marketplace checkout " + req.Reference),
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata("checkout_id", req.Reference)
	params.AddMetadata("customer_id", req.CustomerID)
	params.SetIdempotencyKey("checkout-" + req.Reference)

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusRequiresCapture {
		s.logger.Warn("stripe payment intent not capturable",
			zap.String("intentId", intent.ID),
			zap.String("status", string(intent.Status)))
		return nil, ErrPaymentDeclined
	}

	return &PaymentAuthorization{
		ID:       intent.ID,
		Provider: "stripe",
		Status:   PaymentStatusAuthorized,
		Amount:   req.Amount,
	}, nil
}

func (s *StripePaymentService) Capture(ctx context.Context, authorizationID string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	if _, err := s.api.PaymentIntents.Capture(authorizationID, params); err != nil {
		return fmt.Errorf("stripe: capture %s: %w", authorizationID, err)
	}
	return nil
}

func (s *StripePaymentService) Void(ctx context.Context, authorizationID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := s.api.PaymentIntents.Cancel(authorizationID, params); err != nil {
		return fmt.Errorf("stripe: cancel %s: %w", authorizationID, err)
	}
	return nil
}
