package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/domain/service"
	"vendora/pkg/errors"
)

const defaultPaymentTimeout = 30 * time.Second

type CheckoutInput struct {
	Shipping      entity.ShippingAddress
	PaymentMethod string
	Card          service.CardDetails
	// PaymentToken is a gateway-issued payment method id, used instead of
	// raw card data by gateways that tokenise on the client.
	PaymentToken string
}

type CheckoutResult struct {
	CheckoutID    string          `json:"checkout_id"`
	Orders        []*entity.Order `json:"orders"`
	Total         float64         `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status,omitempty"`
}

type CheckoutUseCase struct {
	carts          *CartUseCase
	checkoutRepo   repository.CheckoutRepository
	payments       service.PaymentGatewayService
	notifier       *NotificationUseCase
	paymentTimeout time.Duration
	currency       string
	logger         *zap.Logger
	now            func() time.Time
}

func NewCheckoutUseCase(
	carts *CartUseCase,
	checkoutRepo repository.CheckoutRepository,
	payments service.PaymentGatewayService,
	notifier *NotificationUseCase,
	paymentTimeout time.Duration,
	currency string,
	logger *zap.Logger,
) *CheckoutUseCase {
	if paymentTimeout <= 0 {
		paymentTimeout = defaultPaymentTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutUseCase{
		carts:          carts,
		checkoutRepo:   checkoutRepo,
		payments:       payments,
		notifier:       notifier,
		paymentTimeout: paymentTimeout,
		currency:       currency,
		logger:         logger,
		now:            time.Now,
	}
}

type requiredField struct {
	label string
	value string
}

// ValidateCheckout reports the first missing field, checked in form order.
func ValidateCheckout(input CheckoutInput) error {
	s := input.Shipping
	fields := []requiredField{
		{"first name", s.FirstName},
		{"last name", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zip code", s.ZipCode},
		{"country", s.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errors.Validation(f.label + " is required")
		}
	}

	switch input.PaymentMethod {
	case entity.PaymentMethodCOD:
		return nil
	case entity.PaymentMethodCard:
	default:
		return errors.Validation("payment method must be card or cod")
	}

	card := []requiredField{
		{"card number", input.Card.Number},
		{"expiry date", input.Card.Expiry},
		{"CVV", input.Card.CVV},
		{"name on card", input.Card.HolderName},
	}
	for _, f := range card {
		if strings.TrimSpace(f.value) == "" {
			return errors.Validation(f.label + " is required")
		}
	}
	return nil
}

// Checkout turns the customer's cart into one pending order per vendor.
// Card payments are authorized first; the orders and stock changes are then
// committed together, and the authorization is voided if that fails.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, customerID string, input CheckoutInput) (*CheckoutResult, error) {
	if err := ValidateCheckout(input); err != nil {
		return nil, err
	}

	owner := CartOwner{UserID: customerID}
	current, err := uc.carts.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart := entity.NewCart(customerID, current.Items)
	if cart.IsEmpty() {
		return nil, errors.Validation("cart is empty")
	}

	checkoutID := uuid.New().String()
	now := uc.now()
	orders, reservations := uc.splitByVendor(checkoutID, customerID, cart, input, now)
	total := roundMoney(cart.Total())

	result := &CheckoutResult{
		CheckoutID:    checkoutID,
		Orders:        orders,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
	}

	var auth *service.PaymentAuthorization
	if input.PaymentMethod == entity.PaymentMethodCard {
		auth, err = uc.authorize(ctx, checkoutID, customerID, total, input)
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			order.PaymentRef = auth.ID
		}
	}

	if err := uc.checkoutRepo.CommitCheckout(ctx, orders, reservations); err != nil {
		uc.logger.Error("checkout commit failed",
			zap.String("checkoutId", checkoutID),
			zap.String("uid", customerID),
			zap.Error(err))
		if auth != nil {
			uc.void(ctx, auth.ID)
		}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.Internal("Failed to place order", err)
	}

	if auth != nil {
		result.PaymentStatus = uc.capture(ctx, auth.ID)
	}

	for _, order := range orders {
		uc.notifier.Notify(ctx, order.VendorID, entity.NotificationTypeOrder,
			"New order received",
			fmt.Sprintf("Order %s: %d item(s), total %.2f", order.ID, countUnits(order.LineItems), order.TotalAmount),
			order.ID)
	}

	if _, err := uc.carts.ClearCart(ctx, owner); err != nil {
		uc.logger.Warn("failed to clear cart after checkout", zap.String("uid", customerID), zap.Error(err))
	}

	uc.logger.Info("checkout completed",
		zap.String("checkoutId", checkoutID),
		zap.String("uid", customerID),
		zap.Int("orders", len(orders)),
		zap.Float64("total", total))
	return result, nil
}

func (uc *CheckoutUseCase) splitByVendor(checkoutID, customerID string, cart *entity.Cart, input CheckoutInput, now time.Time) ([]*entity.Order, []repository.StockReservation) {
	groups := cart.GroupByVendor()
	orders := make([]*entity.Order, 0, len(groups))
	var reservations []repository.StockReservation

	for _, group := range groups {
		lines := make([]entity.OrderLineItem, 0, len(group.Items))
		for _, item := range group.Items {
			lines = append(lines, entity.OrderLineItem{
				ProductID: item.ProductID,
				Title:     item.Title,
				Quantity:  item.Quantity,
				Price:     item.UnitPrice,
			})
			reservations = append(reservations, repository.StockReservation{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		orders = append(orders, &entity.Order{
			ID:              uuid.New().String(),
			CheckoutID:      checkoutID,
			CustomerID:      customerID,
			VendorID:        group.VendorID,
			VendorName:      group.VendorName,
			LineItems:       lines,
			TotalAmount:     roundMoney(group.Total()),
			Status:          entity.OrderStatusPending,
			ShippingAddress: input.Shipping,
			PaymentMethod:   input.PaymentMethod,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return orders, reservations
}

func (uc *CheckoutUseCase) authorize(ctx context.Context, checkoutID, customerID string, total float64, input CheckoutInput) (*service.PaymentAuthorization, error) {
	pctx, cancel := context.WithTimeout(ctx, uc.paymentTimeout)
	defer cancel()

	card := input.Card
	auth, err := uc.payments.Authorize(pctx, service.PaymentRequest{
		Reference:  checkoutID,
		Amount:     total,
		Currency:   uc.currency,
		CustomerID: customerID,
		Email:      input.Shipping.Email,
		Card:       &card,
		Token:      input.PaymentToken,
	})
	if err != nil {
		uc.logger.Warn("payment authorization failed",
			zap.String("checkoutId", checkoutID),
			zap.String("uid", customerID),
			zap.Error(err))
		if stderrors.Is(err, service.ErrPaymentDeclined) {
			return nil, errors.New("PAYMENT_DECLINED", "Payment was declined", http.StatusPaymentRequired, err)
		}
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New("PAYMENT_TIMEOUT", "Payment provider did not respond in time", http.StatusGatewayTimeout, err)
		}
		return nil, errors.Internal("Payment authorization failed", err)
	}
	return auth, nil
}

func (uc *CheckoutUseCase) capture(ctx context.Context, authorizationID string) string {
	pctx, cancel := context.WithTimeout(ctx, uc.paymentTimeout)
	defer cancel()

	if err := uc.payments.Capture(pctx, authorizationID); err != nil {
		uc.logger.Error("payment capture failed, orders stay pending",
			zap.String("authorizationId", authorizationID),
			zap.Error(err))
		return service.PaymentStatusAuthorized
	}
	return service.PaymentStatusCaptured
}

func (uc *CheckoutUseCase) void(ctx context.Context, authorizationID string) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.paymentTimeout)
	defer cancel()

	if err := uc.payments.Void(pctx, authorizationID); err != nil {
		uc.logger.Error("payment void failed",
			zap.String("authorizationId", authorizationID),
			zap.Error(err))
	}
}

func countUnits(lines []entity.OrderLineItem) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
