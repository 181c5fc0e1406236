package service

import (
	"context"
	"io"
)

// ProductImageStore keeps product images. Uploaded images are publicly
// readable at the returned URL.
type ProductImageStore interface {
	UploadProductImage(ctx context.Context, productID string, image io.Reader, contentType string) (string, error)
	DeleteProductImage(ctx context.Context, imageURL string) error
}
