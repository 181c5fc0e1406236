package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/service"
	"vendora/pkg/errors"
)

type checkoutFixture struct {
	uc            *CheckoutUseCase
	carts         *CartUseCase
	products      *memProducts
	orders        *memOrders
	payments      *fakePayments
	notifications *memNotifications
	pusher        *fakePusher
}

func newCheckoutFixture(products ...*entity.Product) *checkoutFixture {
	productRepo := newMemProducts(products...)
	carts := NewCartUseCase(newMemCarts(), newMemCarts(), productRepo, time.Hour, nil)
	orders := newMemOrders(productRepo)
	payments := &fakePayments{}
	notifications := &memNotifications{}
	pusher := &fakePusher{}
	notifier := NewNotificationUseCase(notifications, pusher, nil, nil)

	return &checkoutFixture{
		uc:            NewCheckoutUseCase(carts, orders, payments, notifier, time.Second, "usd", nil),
		carts:         carts,
		products:      productRepo,
		orders:        orders,
		payments:      payments,
		notifications: notifications,
		pusher:        pusher,
	}
}

func validShipping() entity.ShippingAddress {
	return entity.ShippingAddress{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+44 20 0000 0000",
		Address:   "12 St James's Square",
		City:      "London",
		State:     "London",
		ZipCode:   "SW1Y 4JH",
		Country:   "UK",
	}
}

func validCard() service.CardDetails {
	return service.CardDetails{
		Number:     "4242424242424242",
		Expiry:     "12/30",
		CVV:        "123",
		HolderName: "Ada Lovelace",
	}
}

func (f *checkoutFixture) fillCart(t *testing.T, customerID string, lines map[string]int) {
	t.Helper()
	ctx := context.Background()
	owner := CartOwner{UserID: customerID}
	for productID, qty := range lines {
		_, err := f.carts.AddProduct(ctx, owner, productID)
		require.NoError(t, err)
		_, err = f.carts.UpdateQuantity(ctx, owner, productID, qty)
		require.NoError(t, err)
	}
}

func TestCheckout_SplitsOrdersByVendor(t *testing.T) {
	f := newCheckoutFixture(
		testProduct("item1", "V1", 10, 5),
		testProduct("item2", "V2", 5, 5),
	)
	f.fillCart(t, "c1", map[string]int{"item1": 2, "item2": 1})

	result, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      validShipping(),
		PaymentMethod: entity.PaymentMethodCard,
		Card:          validCard(),
	})
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	totals := map[string]float64{}
	for _, order := range result.Orders {
		totals[order.VendorID] = order.TotalAmount
		assert.Equal(t, entity.OrderStatusPending, order.Status)
		assert.Equal(t, result.CheckoutID, order.CheckoutID)
		assert.Equal(t, "auth_"+result.CheckoutID, order.PaymentRef)
	}
	assert.Equal(t, map[string]float64{"V1": 20, "V2": 5}, totals)
	assert.Equal(t, 25.0, result.Total)
	assert.Equal(t, service.PaymentStatusCaptured, result.PaymentStatus)
	assert.Equal(t, 2, f.orders.count())

	assert.Len(t, f.notifications.forUser("V1"), 1)
	assert.Len(t, f.notifications.forUser("V2"), 1)
	assert.Len(t, f.pusher.events, 2)

	require.Len(t, f.payments.authorized, 1)
	assert.Equal(t, 25.0, f.payments.authorized[0].Amount)
	assert.Equal(t, []string{"auth_" + result.CheckoutID}, f.payments.captured)

	assert.Equal(t, 3, f.products.stock("item1"))
	assert.Equal(t, 4, f.products.stock("item2"))

	cart, err := f.carts.GetCart(context.Background(), CartOwner{UserID: "c1"})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckout_MissingFieldIsReportedFirst(t *testing.T) {
	f := newCheckoutFixture(testProduct("item1", "V1", 10, 5))
	f.fillCart(t, "c1", map[string]int{"item1": 1})

	shipping := validShipping()
	shipping.FirstName = ""
	shipping.City = ""

	_, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      shipping,
		PaymentMethod: entity.PaymentMethodCOD,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	assert.Contains(t, err.Error(), "first name")
	assert.Equal(t, 0, f.orders.count())
	assert.Empty(t, f.payments.authorized)
}

func TestValidateCheckout(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *CheckoutInput)
		wantErr string
	}{
		{"valid card", func(in *CheckoutInput) {}, ""},
		{"valid cod without card", func(in *CheckoutInput) {
			in.PaymentMethod = entity.PaymentMethodCOD
			in.Card = service.CardDetails{}
		}, ""},
		{"missing zip", func(in *CheckoutInput) { in.Shipping.ZipCode = " " }, "zip code is required"},
		{"missing country", func(in *CheckoutInput) { in.Shipping.Country = "" }, "country is required"},
		{"unknown method", func(in *CheckoutInput) { in.PaymentMethod = "crypto" }, "payment method must be card or cod"},
		{"missing cvv", func(in *CheckoutInput) { in.Card.CVV = "" }, "CVV is required"},
		{"missing card holder", func(in *CheckoutInput) { in.Card.HolderName = "" }, "name on card is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CheckoutInput{Shipping: validShipping(), PaymentMethod: entity.PaymentMethodCard, Card: validCard()}
			tt.mutate(&in)
			err := ValidateCheckout(in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      validShipping(),
		PaymentMethod: entity.PaymentMethodCOD,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestCheckout_DeclinedPaymentWritesNothing(t *testing.T) {
	f := newCheckoutFixture(testProduct("item1", "V1", 10, 5))
	f.fillCart(t, "c1", map[string]int{"item1": 1})
	f.payments.authorizeErr = fmt.Errorf("card refused: %w", service.ErrPaymentDeclined)

	_, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      validShipping(),
		PaymentMethod: entity.PaymentMethodCard,
		Card:          validCard(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "PAYMENT_DECLINED"))
	assert.Equal(t, 0, f.orders.count())
	assert.Equal(t, 5, f.products.stock("item1"))

	cart, err := f.carts.GetCart(context.Background(), CartOwner{UserID: "c1"})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "cart is kept so the customer can retry")
}

func TestCheckout_CommitFailureVoidsAuthorization(t *testing.T) {
	f := newCheckoutFixture(testProduct("item1", "V1", 10, 5))
	f.fillCart(t, "c1", map[string]int{"item1": 2})

	// Another buyer takes the stock between add-to-cart and checkout.
	f.products.products["item1"].Stock = 1

	_, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      validShipping(),
		PaymentMethod: entity.PaymentMethodCard,
		Card:          validCard(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
	assert.Equal(t, 0, f.orders.count())
	require.Len(t, f.payments.voided, 1)
	assert.Empty(t, f.payments.captured)
	assert.Empty(t, f.notifications.forUser("V1"))
}

func TestCheckout_CashOnDeliverySkipsGateway(t *testing.T) {
	f := newCheckoutFixture(testProduct("item1", "V1", 19.99, 5))
	f.fillCart(t, "c1", map[string]int{"item1": 3})

	result, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      validShipping(),
		PaymentMethod: entity.PaymentMethodCOD,
	})
	require.NoError(t, err)
	assert.Empty(t, f.payments.authorized)
	assert.Empty(t, result.PaymentStatus)
	assert.Equal(t, 59.97, result.Total)
}

func TestCheckout_CaptureFailureKeepsOrders(t *testing.T) {
	f := newCheckoutFixture(testProduct("item1", "V1", 10, 5))
	f.fillCart(t, "c1", map[string]int{"item1": 1})
	f.payments.captureErr = fmt.Errorf("gateway unavailable")

	result, err := f.uc.Checkout(context.Background(), "c1", CheckoutInput{
		Shipping:      validShipping(),
		PaymentMethod: entity.PaymentMethodCard,
		Card:          validCard(),
	})
	require.NoError(t, err)
	assert.Equal(t, service.PaymentStatusAuthorized, result.PaymentStatus)
	assert.Equal(t, 1, f.orders.count())
}
