package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"vendora/internal/adapter/api/middleware"
	"vendora/internal/infrastructure/storage"
	"vendora/internal/usecase"
	"vendora/pkg/errors"
	"vendora/pkg/response"
	"vendora/pkg/utils"
)

const maxImageSize = 5 << 20

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type createProductRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required"`
	Stock       int      `json:"stock" validate:"gte=0"`
	SKU         string   `json:"sku"`
	Featured    bool     `json:"featured"`
	Images      []string `json:"images" validate:"omitempty,max=8,dive,url"`
}

type updateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	SKU         *string  `json:"sku"`
	Featured    *bool    `json:"featured"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productUseCase.ListActive(c.Request().Context(), usecase.ProductQuery{
		Category: c.QueryParam("category"),
		VendorID: c.QueryParam("vendor_id"),
		Featured: utils.GetBoolParam(c, "featured"),
		Limit:    utils.GetLimitParam(c),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, products, len(products))
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productUseCase.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) ListMyProducts(c echo.Context) error {
	products, err := h.productUseCase.ListVendorProducts(c.Request().Context(), middleware.CurrentUserID(c), utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, products, len(products))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), middleware.CurrentUserID(c), usecase.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		SKU:         req.SKU,
		Featured:    req.Featured,
		Images:      req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), user, c.Param("id"), usecase.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		SKU:         req.SKU,
		Featured:    req.Featured,
		Status:      req.Status,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

// DeactivateProduct backs DELETE; products stay in the store for order history.
func (h *ProductHandler) DeactivateProduct(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	product, err := h.productUseCase.DeactivateProduct(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

// UploadImage takes a multipart "image" field.
func (h *ProductHandler) UploadImage(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("image file is required", err))
	}
	if file.Size > maxImageSize {
		return response.Error(c, errors.New("FILE_TOO_LARGE", "image must be 5MB or smaller", http.StatusRequestEntityTooLarge, nil))
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	if !storage.IsSupportedImage(contentType) {
		return response.Error(c, errors.Validation("image must be JPEG, PNG, WebP or GIF"))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}
	defer src.Close()

	product, err := h.productUseCase.UploadImage(c.Request().Context(), user, c.Param("id"), src, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}
