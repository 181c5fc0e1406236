package handler

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/domain/entity"
	"vendora/internal/domain/service"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
)

type CheckoutHandler struct {
	checkoutUseCase *usecase.CheckoutUseCase
}

func NewCheckoutHandler(checkoutUseCase *usecase.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUseCase: checkoutUseCase,
	}
}

type shippingRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

type cardRequest struct {
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	HolderName string `json:"holder_name"`
}

// Field presence is checked by the use case so that the first missing
// field is reported in form order.
type checkoutRequest struct {
	Shipping      shippingRequest `json:"shipping"`
	PaymentMethod string          `json:"payment_method"`
	Card          cardRequest     `json:"card"`
	PaymentToken  string          `json:"payment_token"`
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	s := req.Shipping
	result, err := h.checkoutUseCase.Checkout(c.Request().Context(), middleware.CurrentUserID(c), usecase.CheckoutInput{
		Shipping: entity.ShippingAddress{
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Email:     s.Email,
			Phone:     s.Phone,
			Address:   s.Address,
			City:      s.City,
			State:     s.State,
			ZipCode:   s.ZipCode,
			Country:   s.Country,
		},
		PaymentMethod: req.PaymentMethod,
		Card: service.CardDetails{
			Number:     req.Card.Number,
			Expiry:     req.Card.Expiry,
			CVV:        req.Card.CVV,
			HolderName: req.Card.HolderName,
		},
		PaymentToken: req.PaymentToken,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}
