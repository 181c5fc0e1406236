package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/pkg/errors"
)

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{
		client: client,
	}
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	doc, err := r.client.Collection(ordersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readError("Order", err)
	}

	var order entity.Order
	if err := doc.DataTo(&order); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}
	return &order, nil
}

func (r *firestoreOrderRepository) TransitionStatus(ctx context.Context, id, orderStatus string, check func(order *entity.Order) error) (*entity.Order, error) {
	if !entity.IsOrderStatus(orderStatus) {
		return nil, errors.Validation(fmt.Sprintf("invalid order status %q", orderStatus))
	}

	ref := r.client.Collection(ordersCollection).Doc(id)
	var updated *entity.Order
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return readError("Order", err)
		}

		var order entity.Order
		if err := snap.DataTo(&order); err != nil {
			return errors.Internal("Failed to parse order data", err)
		}
		if err := check(&order); err != nil {
			return err
		}

		// all reads happen before the first write
		var restocked []*entity.Product
		if orderStatus == entity.OrderStatusCancelled {
			if restocked, err = r.restock(tx, order.LineItems); err != nil {
				return err
			}
		}

		now := time.Now()
		for _, product := range restocked {
			err := tx.Update(r.client.Collection(productsCollection).Doc(product.ID), []firestore.Update{
				{Path: "stock", Value: product.Stock},
				{Path: "status", Value: product.Status},
				{Path: "updatedAt", Value: now},
			})
			if err != nil {
				return err
			}
		}

		order.Status = orderStatus
		order.UpdatedAt = now
		if err := tx.Update(ref, []firestore.Update{
			{Path: "status", Value: orderStatus},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}
		updated = &order
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.Internal("Failed to update order status", err)
	}
	return updated, nil
}

// restock reads the products of items and returns them with the quantities
// added back. Products that no longer exist are skipped.
func (r *firestoreOrderRepository) restock(tx *firestore.Transaction, items []entity.OrderLineItem) ([]*entity.Product, error) {
	returned := make(map[string]int)
	var productIDs []string
	for _, item := range items {
		if _, ok := returned[item.ProductID]; !ok {
			productIDs = append(productIDs, item.ProductID)
		}
		returned[item.ProductID] += item.Quantity
	}

	products := make([]*entity.Product, 0, len(productIDs))
	for _, id := range productIDs {
		snap, err := tx.Get(r.client.Collection(productsCollection).Doc(id))
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return nil, err
		}

		var product entity.Product
		if err := snap.DataTo(&product); err != nil {
			return nil, errors.Internal("Failed to parse product data", err)
		}
		product.ID = id
		product.Stock += returned[id]
		product.DeriveStatus()
		products = append(products, &product)
	}
	return products, nil
}

func (r *firestoreOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	query := r.client.Collection(ordersCollection).Query
	if filter.CustomerID != "" {
		query = query.Where("customerId", "==", filter.CustomerID)
	}
	if filter.VendorID != "" {
		query = query.Where("vendorId", "==", filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	query = applyLimit(query.OrderBy("createdAt", firestore.Desc), filter.Limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	orders := []*entity.Order{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate orders", err)
		}

		var order entity.Order
		if err := doc.DataTo(&order); err != nil {
			return nil, errors.Internal("Failed to parse order data", err)
		}
		orders = append(orders, &order)
	}
	return orders, nil
}

type firestoreCheckoutRepository struct {
	client *firestore.Client
}

func NewFirestoreCheckoutRepository(client *firestore.Client) repository.CheckoutRepository {
	return &firestoreCheckoutRepository{
		client: client,
	}
}

// CommitCheckout re-reads every reserved product inside the transaction, so
// two checkouts racing for the last unit cannot both succeed.
func (r *firestoreCheckoutRepository) CommitCheckout(ctx context.Context, orders []*entity.Order, reservations []repository.StockReservation) error {
	for _, order := range orders {
		if err := validateDocument("order", order); err != nil {
			return err
		}
	}

	wanted := make(map[string]int)
	var productIDs []string
	for _, res := range reservations {
		if _, ok := wanted[res.ProductID]; !ok {
			productIDs = append(productIDs, res.ProductID)
		}
		wanted[res.ProductID] += res.Quantity
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		products := make([]*entity.Product, 0, len(productIDs))
		for _, id := range productIDs {
			snap, err := tx.Get(r.client.Collection(productsCollection).Doc(id))
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return errors.Conflict(fmt.Sprintf("product %s is no longer available", id))
				}
				return err
			}

			var product entity.Product
			if err := snap.DataTo(&product); err != nil {
				return errors.Internal("Failed to parse product data", err)
			}
			product.ID = id
			if !product.Purchasable() || product.Stock < wanted[id] {
				return errors.Conflict(fmt.Sprintf("insufficient stock for %s", product.Title))
			}
			products = append(products, &product)
		}

		now := time.Now()
		for _, product := range products {
			product.Stock -= wanted[product.ID]
			product.DeriveStatus()
			err := tx.Update(r.client.Collection(productsCollection).Doc(product.ID), []firestore.Update{
				{Path: "stock", Value: product.Stock},
				{Path: "status", Value: product.Status},
				{Path: "updatedAt", Value: now},
			})
			if err != nil {
				return err
			}
		}

		for _, order := range orders {
			if err := tx.Create(r.client.Collection(ordersCollection).Doc(order.ID), order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return appErr
		}
		return errors.Internal("Failed to commit checkout", err)
	}
	return nil
}
