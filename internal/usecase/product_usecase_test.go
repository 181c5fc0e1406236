package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/domain/entity"
	"vendora/pkg/errors"
)

type fakeFiles struct {
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakeFiles) UploadProductImage(_ context.Context, productID string, image io.Reader, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.ReadAll(image); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://storage.example/products/%s/%d.png", productID, len(f.uploaded))
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeFiles) DeleteProductImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func newProductFixture() (*ProductUseCase, *memProducts, *fakeFiles) {
	products := newMemProducts()
	users := newMemUsers(vendor, customer, admin)
	files := &fakeFiles{}
	return NewProductUseCase(products, users, files, nil), products, files
}

func TestProductUseCase_CreateDerivesStatus(t *testing.T) {
	uc, _, _ := newProductFixture()
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, "v1", CreateProductInput{Title: " Kettle ", Category: "kitchen", Price: 25, Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "Kettle", p.Title)
	assert.Equal(t, "Store v1", p.VendorName)
	assert.Equal(t, entity.ProductStatusActive, p.Status)

	empty, err := uc.CreateProduct(ctx, "v1", CreateProductInput{Title: "Mug", Category: "kitchen", Price: 5})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusOutOfStock, empty.Status)

	listed, err := uc.ListActive(ctx, ProductQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, p.ID, listed[0].ID)
}

func TestProductUseCase_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateProductInput
		want  string
	}{
		{"missing title", CreateProductInput{Category: "c", Price: 1}, "title is required"},
		{"missing category", CreateProductInput{Title: "t", Price: 1}, "category is required"},
		{"zero price", CreateProductInput{Title: "t", Category: "c"}, "price must be greater than 0"},
		{"negative stock", CreateProductInput{Title: "t", Category: "c", Price: 1, Stock: -1}, "stock cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, products, _ := newProductFixture()
			_, err := uc.CreateProduct(context.Background(), "v1", tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, products.products)
		})
	}
}

func TestProductUseCase_Ownership(t *testing.T) {
	uc, _, _ := newProductFixture()
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, "v1", CreateProductInput{Title: "Lamp", Category: "home", Price: 40, Stock: 2})
	require.NoError(t, err)

	stock := 0
	_, err = uc.UpdateProduct(ctx, &entity.User{ID: "v2", Role: entity.RoleVendor}, p.ID, UpdateProductInput{Stock: &stock})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	updated, err := uc.UpdateProduct(ctx, vendor, p.ID, UpdateProductInput{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusOutOfStock, updated.Status)

	deactivated, err := uc.DeactivateProduct(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusOutOfStock, deactivated.Status, "zero stock outranks inactive")

	restock := 3
	restocked, err := uc.UpdateProduct(ctx, vendor, p.ID, UpdateProductInput{Stock: &restock})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusActive, restocked.Status)

	bad := "archived"
	_, err = uc.UpdateProduct(ctx, vendor, p.ID, UpdateProductInput{Status: &bad})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestProductUseCase_UploadImage(t *testing.T) {
	uc, _, files := newProductFixture()
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, "v1", CreateProductInput{Title: "Vase", Category: "home", Price: 12, Stock: 1})
	require.NoError(t, err)

	updated, err := uc.UploadImage(ctx, vendor, p.ID, strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, files.uploaded[0], updated.Images[0])

	_, err = uc.UploadImage(ctx, customer, p.ID, strings.NewReader("png"), "image/png")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	files.uploadErr = fmt.Errorf("bucket unavailable")
	_, err = uc.UploadImage(ctx, vendor, p.ID, strings.NewReader("png"), "image/png")
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))
}

func TestProductUseCase_UploadWithoutStorage(t *testing.T) {
	uc := NewProductUseCase(newMemProducts(), newMemUsers(vendor), nil, nil)
	_, err := uc.UploadImage(context.Background(), vendor, "p1", strings.NewReader("png"), "image/png")
	assert.True(t, errors.Is(err, "STORAGE_DISABLED"))
}
