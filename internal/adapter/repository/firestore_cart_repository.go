package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/pkg/errors"
)

type firestoreCartRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreCartRepository stores carts of signed-in users.
func NewFirestoreCartRepository(client *firestore.Client) repository.CartRepository {
	return &firestoreCartRepository{client: client, collection: cartsCollection}
}

// NewFirestoreGuestCartRepository stores carts of anonymous sessions.
func NewFirestoreGuestCartRepository(client *firestore.Client) repository.CartRepository {
	return &firestoreCartRepository{client: client, collection: guestCartsCollection}
}

func (r *firestoreCartRepository) GetItems(ctx context.Context, ownerID string) ([]entity.CartItem, error) {
	doc, err := r.client.Collection(r.collection).Doc(ownerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []entity.CartItem{}, nil
		}
		return nil, errors.Internal("Failed to get cart", err)
	}

	var cart entity.Cart
	if err := doc.DataTo(&cart); err != nil {
		return nil, errors.Internal("Failed to parse cart data", err)
	}
	if cart.Items == nil {
		cart.Items = []entity.CartItem{}
	}
	return cart.Items, nil
}

func (r *firestoreCartRepository) SaveItems(ctx context.Context, ownerID string, items []entity.CartItem) error {
	if items == nil {
		items = []entity.CartItem{}
	}
	cart := &entity.Cart{
		OwnerID:   ownerID,
		Items:     items,
		UpdatedAt: time.Now(),
	}
	if err := validateDocument("cart", cart); err != nil {
		return err
	}

	if _, err := r.client.Collection(r.collection).Doc(ownerID).Set(ctx, cart); err != nil {
		return errors.Internal("Failed to save cart", err)
	}
	return nil
}

func (r *firestoreCartRepository) Delete(ctx context.Context, ownerID string) error {
	if _, err := r.client.Collection(r.collection).Doc(ownerID).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete cart", err)
	}
	return nil
}
