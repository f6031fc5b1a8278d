package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/database"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Service implements the two read projections over the order store: the
// per-user feed and the staff feed. Both are pure derived reads.
type Service struct {
	db     *database.DB
	logger *logger.Logger
}

// NewService creates the tracking service.
func NewService(db *database.DB, log *logger.Logger) *Service {
	return &Service{
		db:     db,
		logger: log,
	}
}

// ListUserOrders returns the caller's orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.listOrders(ctx, database.ListOrdersByUserSQL, userID)
}

// ListAllOrders returns every order, newest first (staff feed).
func (s *Service) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, database.ListAllOrdersSQL)
}

func (s *Service) listOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		err := rows.Scan(&order.ID, &order.Number, &order.UserID, &order.UserEmail,
			&order.CustomerName, &order.CustomerMobile, &order.TotalAmount, &order.Status,
			&order.SlotID, &order.ScheduledTime, &order.TransactionID,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		index[order.ID] = i
	}

	rows, err := s.db.Query(ctx, database.ListOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

// GetOrder returns one order with its line items.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.QueryRow(ctx, database.GetOrderSQL, orderID).
		Scan(&order.ID, &order.Number, &order.UserID, &order.UserEmail,
			&order.CustomerName, &order.CustomerMobile, &order.TotalAmount, &order.Status,
			&order.SlotID, &order.ScheduledTime, &order.TransactionID,
			&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	orders := []models.Order{order}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// GetStatusHistory returns the audit trail of an order's transitions.
func (s *Service) GetStatusHistory(ctx context.Context, orderID string) ([]models.StatusLogEntry, error) {
	rows, err := s.db.Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	history := []models.StatusLogEntry{}
	for rows.Next() {
		var entry models.StatusLogEntry
		if err := rows.Scan(&entry.Status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log entry: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	return history, nil
}

// HealthCheck reports whether the persistence boundary is reachable.
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.db.Ping(ctx) == nil
}
