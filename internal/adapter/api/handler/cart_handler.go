package handler

import (
	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
)

type CartHandler struct {
	cartUseCase *usecase.CartUseCase
}

func NewCartHandler(cartUseCase *usecase.CartUseCase) *CartHandler {
	return &CartHandler{
		cartUseCase: cartUseCase,
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type mergeCartRequest struct {
	GuestSessionID string `json:"guest_session_id"`
}

type guestSessionView struct {
	GuestSessionID string `json:"guest_session_id"`
}

// IssueGuestSession hands a signed-out browser the id to send in the guest
// session header.
func (h *CartHandler) IssueGuestSession(c echo.Context) error {
	id := usecase.NewGuestID()
	c.Response().Header().Set(GuestSessionHeader, id)
	return response.Created(c, guestSessionView{GuestSessionID: id})
}

// cartOwner picks the signed-in user, or the guest session header for
// anonymous callers.
func cartOwner(c echo.Context) (usecase.CartOwner, error) {
	if uid := middleware.CurrentUserID(c); uid != "" {
		return usecase.CartOwner{UserID: uid}, nil
	}
	guestID := c.Request().Header.Get(GuestSessionHeader)
	if guestID == "" {
		return usecase.CartOwner{}, errors.BadRequest("Sign in or send an "+GuestSessionHeader+" header", nil)
	}
	if !usecase.ValidGuestID(guestID) {
		return usecase.CartOwner{}, errors.BadRequest("Guest session id must be one issued by the server", nil)
	}
	return usecase.CartOwner{GuestID: guestID}, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.GetCart(c.Request().Context(), owner)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, cartView(cart))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.AddProduct(c.Request().Context(), owner, req.ProductID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, cartView(cart))
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	cart, err := h.cartUseCase.UpdateQuantity(c.Request().Context(), owner, c.Param("productId"), req.Quantity)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, cartView(cart))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.RemoveItem(c.Request().Context(), owner, c.Param("productId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, cartView(cart))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return response.Error(c, err)
	}

	cart, err := h.cartUseCase.ClearCart(c.Request().Context(), owner)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, cartView(cart))
}

// MergeCart folds a guest cart into the caller's cart. The guest id comes
// from the body or, failing that, the guest session header.
func (h *CartHandler) MergeCart(c echo.Context) error {
	var req mergeCartRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	guestID := req.GuestSessionID
	if guestID == "" {
		guestID = c.Request().Header.Get(GuestSessionHeader)
	}

	cart, err := h.cartUseCase.Merge(c.Request().Context(), middleware.CurrentUserID(c), guestID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, cartView(cart))
}
