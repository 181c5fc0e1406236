package usecase

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/internal/domain/service"
	"vendora/pkg/errors"
)

const maxProductImages = 8

type ProductUseCase struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	files       service.ProductImageStore
	logger      *zap.Logger
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	files service.ProductImageStore,
	logger *zap.Logger,
) *ProductUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductUseCase{
		productRepo: productRepo,
		userRepo:    userRepo,
		files:       files,
		logger:      logger,
	}
}

type ProductQuery struct {
	Category string
	VendorID string
	Featured bool
	Limit    int
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Stock       int
	SKU         string
	Featured    bool
	Images      []string
}

// UpdateProductInput carries only the fields being changed.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
	SKU         *string
	Featured    *bool
	Status      *string
}

// ListActive is the storefront listing: only products that can be bought.
func (uc *ProductUseCase) ListActive(ctx context.Context, query ProductQuery) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, repository.ProductFilter{
		VendorID: query.VendorID,
		Category: query.Category,
		Status:   entity.ProductStatusActive,
		Featured: query.Featured,
		Limit:    query.Limit,
	})
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) ListVendorProducts(ctx context.Context, vendorID string, limit int) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, repository.ProductFilter{VendorID: vendorID, Limit: limit})
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, vendorID string, input CreateProductInput) (*entity.Product, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.Validation("title is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, errors.Validation("category is required")
	}
	if err := validatePricing(input.Price, input.Stock); err != nil {
		return nil, err
	}

	vendor, err := uc.userRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}
	product := &entity.Product{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		Images:      images,
		VendorID:    vendor.ID,
		VendorName:  vendorDisplayName(vendor),
		Stock:       input.Stock,
		SKU:         input.SKU,
		Featured:    input.Featured,
		Status:      entity.ProductStatusActive,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.logger.Info("product created",
		zap.String("productId", product.ID),
		zap.String("vendorId", vendorID),
		zap.String("status", product.Status))
	return product, nil
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, actor *entity.User, id string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, errors.Validation("title is required")
		}
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, errors.Validation("category is required")
		}
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	if input.Status != nil {
		switch *input.Status {
		case entity.ProductStatusActive, entity.ProductStatusInactive:
			product.Status = *input.Status
		default:
			return nil, errors.Validation("status must be active or inactive")
		}
	}
	if err := validatePricing(product.Price, product.Stock); err != nil {
		return nil, err
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeactivateProduct hides a product from the storefront. Products are never
// deleted because orders reference them.
func (uc *ProductUseCase) DeactivateProduct(ctx context.Context, actor *entity.User, id string) (*entity.Product, error) {
	status := entity.ProductStatusInactive
	return uc.UpdateProduct(ctx, actor, id, UpdateProductInput{Status: &status})
}

func (uc *ProductUseCase) UploadImage(ctx context.Context, actor *entity.User, id string, file io.Reader, contentType string) (*entity.Product, error) {
	if uc.files == nil {
		return nil, errors.New("STORAGE_DISABLED", "Image uploads are not configured", http.StatusServiceUnavailable, nil)
	}
	product, err := uc.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(product.Images) >= maxProductImages {
		return nil, errors.Validation("a product can have at most 8 images")
	}

	url, err := uc.files.UploadProductImage(ctx, product.ID, file, contentType)
	if err != nil {
		return nil, errors.Internal("Failed to upload image", err)
	}

	product.Images = append(product.Images, url)
	if err := uc.productRepo.Update(ctx, product); err != nil {
		if delErr := uc.files.DeleteProductImage(ctx, url); delErr != nil {
			uc.logger.Warn("failed to remove orphaned image", zap.String("url", url), zap.Error(delErr))
		}
		return nil, err
	}
	return product, nil
}

func (uc *ProductUseCase) ownedProduct(ctx context.Context, actor *entity.User, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != entity.RoleAdmin && product.VendorID != actor.ID {
		return nil, errors.Forbidden("You can only manage your own products", nil)
	}
	return product, nil
}

func validatePricing(price float64, stock int) error {
	if price <= 0 {
		return errors.Validation("price must be greater than 0")
	}
	if stock < 0 {
		return errors.Validation("stock cannot be negative")
	}
	return nil
}

func vendorDisplayName(u *entity.User) string {
	if u.VendorName != "" {
		return u.VendorName
	}
	return u.DisplayName
}
