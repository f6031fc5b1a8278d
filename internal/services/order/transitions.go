package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/auth"
	"canteen-system/internal/database"
	"canteen-system/internal/metrics"
	"canteen-system/internal/models"
)

// TransitionStatus moves an order to the target status. The order row is
// locked for the duration of the transaction, so two racing transitions
// resolve to exactly one winner; the loser fails the state-machine check.
// A transition to Cancelled additionally frees the order's slot seat in the
// same transaction.
func (s *Service) TransitionStatus(ctx context.Context, identity *auth.Identity, orderID string, target models.OrderStatus, requestID string) (*models.Order, error) {
	var order *models.Order
	var from models.OrderStatus
	var err error

	for attempt := 0; attempt < maxAdmissionAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoffBase << (attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		order, from, err = s.transitionOnce(ctx, identity, orderID, target)
		if err == nil || !isRetryable(err) {
			break
		}
	}

	if err != nil {
		if isRetryable(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrAdmissionConflict, err)
		}
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()

	s.logger.Info("status_transitioned", fmt.Sprintf("Order %s moved from %s to %s", order.Number, from, target), requestID, map[string]interface{}{
		"order_id":   order.ID,
		"old_status": string(from),
		"new_status": string(target),
		"changed_by": identity.Email,
	})

	s.publishTransition(ctx, order, from, identity.Email, requestID)

	return order, nil
}

func (s *Service) transitionOnce(ctx context.Context, identity *auth.Identity, orderID string, target models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, database.GetOrderForUpdateSQL, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to read order: %w", err)
	}

	from := order.Status
	if err := models.CanTransition(from, target); err != nil {
		return nil, "", err
	}

	if _, err = tx.Exec(ctx, database.UpdateOrderStatusSQL, target, order.ID); err != nil {
		return nil, "", fmt.Errorf("failed to update order status: %w", err)
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL,
		order.ID, target, identity.Email, fmt.Sprintf("status changed from %s to %s", from, target))
	if err != nil {
		return nil, "", fmt.Errorf("failed to insert status log: %w", err)
	}

	// Cancellation compensates the admission: the slot seat consumed by
	// this order is released in the same transaction as the status write,
	// so the counter and the set of active orders never drift apart.
	if target == models.StatusCancelled {
		if err := releaseSlotSeat(ctx, tx, order.SlotID); err != nil {
			return nil, "", err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to commit transition: %w", err)
	}

	order.Status = target
	return order, from, nil
}

func releaseSlotSeat(ctx context.Context, tx pgx.Tx, slotID string) error {
	var slot models.Slot
	err := tx.QueryRow(ctx, database.GetSlotForUpdateSQL, slotID).
		Scan(&slot.ID, &slot.StartTime, &slot.Capacity, &slot.CurrentOrders, &slot.Status)
	if err != nil {
		return fmt.Errorf("failed to read slot for release: %w", err)
	}

	if slot.CurrentOrders < 1 {
		return fmt.Errorf("slot %s counter already at zero", slotID)
	}

	newStatus := slot.Status
	if newStatus == models.SlotFull {
		newStatus = models.SlotAvailable
	}

	if _, err = tx.Exec(ctx, database.UpdateSlotCountSQL, slot.CurrentOrders-1, newStatus, slot.ID); err != nil {
		return fmt.Errorf("failed to release slot seat: %w", err)
	}
	return nil
}

func (s *Service) publishTransition(ctx context.Context, order *models.Order, from models.OrderStatus, changedBy, requestID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishOrderEvent(ctx, models.NewStatusChangedEvent(order, from, changedBy)); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish status changed event", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}

	notification := &models.StatusNotification{
		OrderNumber:  order.Number,
		CustomerName: order.CustomerName,
		NewStatus:    order.Status,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish transition notification", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(&order.ID, &order.Number, &order.UserID, &order.UserEmail,
		&order.CustomerName, &order.CustomerMobile, &order.TotalAmount, &order.Status,
		&order.SlotID, &order.ScheduledTime, &order.TransactionID,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
