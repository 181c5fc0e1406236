package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"vendora/internal/domain/entity"
	"vendora/internal/domain/repository"
	"vendora/pkg/errors"
)

const exportSheet = "Orders"

type OrderUseCase struct {
	orderRepo repository.OrderRepository
	notifier  *NotificationUseCase
	logger    *zap.Logger
}

func NewOrderUseCase(orderRepo repository.OrderRepository, notifier *NotificationUseCase, logger *zap.Logger) *OrderUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUseCase{
		orderRepo: orderRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// GetOrder returns the order if actor is its customer, its vendor or an admin.
func (uc *OrderUseCase) GetOrder(ctx context.Context, actor *entity.User, id string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, errors.Forbidden("You do not have access to this order", nil)
	}
	return order, nil
}

func (uc *OrderUseCase) ListCustomerOrders(ctx context.Context, customerID string, limit int) ([]*entity.Order, error) {
	return uc.orderRepo.List(ctx, repository.OrderFilter{CustomerID: customerID, Limit: limit})
}

func (uc *OrderUseCase) ListVendorOrders(ctx context.Context, vendorID, status string, limit int) ([]*entity.Order, error) {
	if status != "" && !entity.IsOrderStatus(status) {
		return nil, errors.Validation(fmt.Sprintf("invalid order status %q", status))
	}
	return uc.orderRepo.List(ctx, repository.OrderFilter{VendorID: vendorID, Status: status, Limit: limit})
}

func (uc *OrderUseCase) ListAllOrders(ctx context.Context, status string, limit int) ([]*entity.Order, error) {
	if status != "" && !entity.IsOrderStatus(status) {
		return nil, errors.Validation(fmt.Sprintf("invalid order status %q", status))
	}
	return uc.orderRepo.List(ctx, repository.OrderFilter{Status: status, Limit: limit})
}

// UpdateStatus moves an order along its lifecycle. Vendors act on their own
// orders, admins on any, and customers may only cancel their own pending order.
// Permission and transition are checked against the stored order inside the
// write, and a cancelled order's units go back on sale.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, actor *entity.User, id, status string) (*entity.Order, error) {
	if !entity.IsOrderStatus(status) {
		return nil, errors.Validation(fmt.Sprintf("invalid order status %q", status))
	}

	var previous string
	order, err := uc.orderRepo.TransitionStatus(ctx, id, status, func(current *entity.Order) error {
		previous = current.Status
		if err := authorizeTransition(actor, current, status); err != nil {
			return err
		}
		if !entity.CanTransitionOrder(current.Status, status) {
			return errors.Conflict(fmt.Sprintf("cannot change order from %s to %s", current.Status, status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed",
		zap.String("orderId", id),
		zap.String("from", previous),
		zap.String("to", status),
		zap.String("actor", actor.ID))

	uc.notifier.Notify(ctx, order.CustomerID, entity.NotificationTypeOrder,
		"Order "+status,
		fmt.Sprintf("Your order %s from %s is now %s.", order.ID, vendorLabel(order), status),
		order.ID)
	if actor.ID == order.CustomerID && actor.ID != order.VendorID {
		uc.notifier.Notify(ctx, order.VendorID, entity.NotificationTypeOrder,
			"Order cancelled by customer",
			fmt.Sprintf("Order %s was cancelled by the customer.", order.ID),
			order.ID)
	}
	return order, nil
}

func authorizeTransition(actor *entity.User, order *entity.Order, status string) error {
	switch {
	case actor.Role == entity.RoleAdmin:
		return nil
	case actor.Role == entity.RoleVendor && order.VendorID == actor.ID:
		return nil
	case order.CustomerID == actor.ID:
		if status == entity.OrderStatusCancelled && order.Status == entity.OrderStatusPending {
			return nil
		}
		return errors.Forbidden("Customers can only cancel pending orders", nil)
	}
	return errors.Forbidden("You cannot update this order", nil)
}

func canView(actor *entity.User, order *entity.Order) bool {
	return actor.Role == entity.RoleAdmin ||
		order.CustomerID == actor.ID ||
		order.VendorID == actor.ID
}

func vendorLabel(order *entity.Order) string {
	if order.VendorName != "" {
		return order.VendorName
	}
	return "the vendor"
}

// ExportVendorOrders renders the vendor's orders as an xlsx workbook, one
// row per line item.
func (uc *OrderUseCase) ExportVendorOrders(ctx context.Context, vendorID, status string) ([]byte, error) {
	orders, err := uc.ListVendorOrders(ctx, vendorID, status, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, errors.Internal("Failed to prepare export", err)
	}

	headers := []interface{}{
		"Order ID", "Checkout ID", "Created", "Status", "Customer", "Ship To",
		"Product ID", "Title", "Quantity", "Unit Price", "Line Total", "Order Total", "Payment",
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		return nil, errors.Internal("Failed to write export header", err)
	}

	row := 2
	for _, order := range orders {
		ship := order.ShippingAddress
		shipTo := strings.TrimSpace(fmt.Sprintf("%s %s, %s, %s %s, %s",
			ship.FirstName, ship.LastName, ship.Address, ship.City, ship.ZipCode, ship.Country))
		for _, line := range order.LineItems {
			values := []interface{}{
				order.ID,
				order.CheckoutID,
				order.CreatedAt.UTC().Format("2006-01-02 15:04"),
				order.Status,
				ship.Email,
				shipTo,
				line.ProductID,
				line.Title,
				line.Quantity,
				line.Price,
				roundMoney(line.Price * float64(line.Quantity)),
				order.TotalAmount,
				order.PaymentMethod,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, errors.Internal("Failed to write export row", err)
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, errors.Internal("Failed to write export row", err)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Internal("Failed to render export", err)
	}

	uc.logger.Info("vendor orders exported",
		zap.String("vendorId", vendorID),
		zap.Int("orders", len(orders)),
		zap.Int("rows", row-2))
	return buf.Bytes(), nil
}
