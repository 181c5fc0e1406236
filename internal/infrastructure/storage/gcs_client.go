package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const publicHost = "https://storage.googleapis.com/"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// IsSupportedImage reports whether contentType can be stored as a product image.
func IsSupportedImage(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

// CloudStorageClient stores product images in a single bucket.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	logger     *zap.Logger
}

func NewCloudStorageClient(ctx context.Context, bucketName string, logger *zap.Logger, opts ...option.ClientOption) (*CloudStorageClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		logger:     logger,
	}, nil
}

const productFolder = "products"

// ObjectName builds the object path for a new image of productID.
func ObjectName(productID, contentType string, now time.Time) string {
	ext, ok := extensions[contentType]
	if !ok {
		ext = ".bin"
	}
	name := fmt.Sprintf("%s-%s%s", now.UTC().Format("20060102150405"), uuid.New().String(), ext)
	return path.Join(productFolder, strings.Trim(productID, "/"), name)
}

func (c *CloudStorageClient) UploadProductImage(ctx context.Context, productID string, image io.Reader, contentType string) (string, error) {
	if strings.TrimSpace(productID) == "" {
		return "", fmt.Errorf("product id is required")
	}
	objectName := ObjectName(productID, contentType, time.Now())

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, image); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to copy image to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		// Buckets with uniform access reject object ACLs; the object is
		// still readable if the bucket itself is public.
		c.logger.Warn("failed to set object ACL", zap.String("object", objectName), zap.Error(err))
	}

	c.logger.Info("product image uploaded",
		zap.String("bucket", c.bucketName),
		zap.String("productId", productID),
		zap.String("object", objectName))
	return publicHost + c.bucketName + "/" + objectName, nil
}

func (c *CloudStorageClient) DeleteProductImage(ctx context.Context, imageURL string) error {
	objectName, err := c.objectFromURL(imageURL)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (c *CloudStorageClient) objectFromURL(fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, publicHost) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(strings.TrimPrefix(fileURL, publicHost), "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	if !strings.HasPrefix(parts[1], productFolder+"/") {
		return "", fmt.Errorf("%s is not a product image", parts[1])
	}
	return parts[1], nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
