package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"canteen-system/internal/auth"
	"canteen-system/internal/config"
	"canteen-system/internal/database"
	"canteen-system/internal/logger"
	"canteen-system/internal/metrics"
	"canteen-system/internal/models"
)

const (
	maxAdmissionAttempts = 5
	retryBackoffBase     = 50 * time.Millisecond
)

// EventPublisher is the outbound notification boundary. Publish failures
// are logged but never fail a committed admission or transition.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
	PublishNotification(ctx context.Context, notification *models.StatusNotification) error
}

// Service implements order admission and the kitchen-workflow transitions.
type Service struct {
	db        *database.DB
	publisher EventPublisher
	logger    *logger.Logger
	slots     config.SlotsConfig
}

// NewService creates the order service.
func NewService(db *database.DB, publisher EventPublisher, log *logger.Logger, slots config.SlotsConfig) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		logger:    log,
		slots:     slots,
	}
}

// AdmitOrder converts a checkout attempt into a persisted order while
// enforcing the slot capacity limit. The slot-counter increment and the
// order insert commit as one transaction; on any failure neither applies.
func (s *Service) AdmitOrder(ctx context.Context, identity *auth.Identity, req *models.CreateOrderRequest, requestID string) (*models.CreateOrderResponse, error) {
	start := time.Now()

	req.Sanitize()
	if err := req.Validate(); err != nil {
		metrics.AdmissionsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	interval := time.Duration(s.slots.IntervalMinutes) * time.Minute
	if models.SlotID(req.SlotStartTime, interval) != req.SlotID {
		metrics.AdmissionsTotal.WithLabelValues("validation").Inc()
		return nil, &models.ValidationError{Field: "slot_id", Message: "does not match slot start time"}
	}

	var order *models.Order
	var err error
	for attempt := 0; attempt < maxAdmissionAttempts; attempt++ {
		if attempt > 0 {
			metrics.AdmissionRetries.Inc()
			select {
			case <-time.After(retryBackoffBase << (attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		order, err = s.admitOnce(ctx, identity, req)
		if err == nil || !isRetryable(err) {
			break
		}

		s.logger.Debug("admission_retry", "Admission commit conflict, retrying", requestID, map[string]interface{}{
			"attempt": attempt + 1,
			"slot_id": req.SlotID,
		})
	}

	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues(admissionOutcome(err)).Inc()
		if isRetryable(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrAdmissionConflict, err)
		}
		return nil, err
	}

	metrics.AdmissionsTotal.WithLabelValues("admitted").Inc()
	metrics.AdmissionDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("order_admitted", fmt.Sprintf("Order %s admitted into slot %s", order.Number, order.SlotID), requestID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.Number,
		"slot_id":      order.SlotID,
		"total_amount": order.TotalAmount,
	})

	s.publishAdmission(ctx, order, requestID)

	return &models.CreateOrderResponse{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
	}, nil
}

// admitOnce runs a single attempt of the admission transaction.
func (s *Service) admitOnce(ctx context.Context, identity *auth.Identity, req *models.CreateOrderRequest) (*models.Order, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Store gate first: while the store is closed every new admission is
	// rejected before any write.
	var isOpen bool
	err = tx.QueryRow(ctx, database.GetStoreOpenSQL).Scan(&isOpen)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read store settings: %w", err)
	}
	if err == nil && !isOpen {
		return nil, models.ErrStoreClosed
	}

	slotStart := req.SlotStartTime.UTC().Truncate(time.Duration(s.slots.IntervalMinutes) * time.Minute)

	// Lazily materialize the slot, then take the row lock. The lock makes
	// the capacity check and the counter increment indivisible across
	// concurrent admissions.
	if _, err = tx.Exec(ctx, database.EnsureSlotSQL, req.SlotID, slotStart, s.slots.Capacity); err != nil {
		return nil, fmt.Errorf("failed to ensure slot: %w", err)
	}

	var slot models.Slot
	err = tx.QueryRow(ctx, database.GetSlotForUpdateSQL, req.SlotID).
		Scan(&slot.ID, &slot.StartTime, &slot.Capacity, &slot.CurrentOrders, &slot.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}

	if !slot.Admissible() {
		return nil, models.ErrSlotFull
	}

	newCount := slot.CurrentOrders + 1
	newStatus := models.SlotAvailable
	if newCount >= slot.Capacity {
		newStatus = models.SlotFull
	}
	if _, err = tx.Exec(ctx, database.UpdateSlotCountSQL, newCount, newStatus, slot.ID); err != nil {
		return nil, fmt.Errorf("failed to update slot count: %w", err)
	}

	number, err := s.nextOrderNumber(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &models.Order{
		ID:             uuid.NewString(),
		Number:         number,
		UserID:         identity.UserID,
		UserEmail:      identity.Email,
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
		Items:          req.Items,
		TotalAmount:    req.TotalAmount(),
		Status:         models.StatusPendingApproval,
		SlotID:         slot.ID,
		ScheduledTime:  slot.StartTime,
		TransactionID:  req.TransactionID,
	}

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.ID, order.Number, order.UserID, order.UserEmail, order.CustomerName,
		order.CustomerMobile, order.TotalAmount, order.Status, order.SlotID,
		order.ScheduledTime, order.TransactionID).Scan(&order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL,
			order.ID, item.MenuItemID, item.Name, item.Quantity, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL,
		order.ID, order.Status, "order-service", "order admitted, awaiting payment verification")
	if err != nil {
		return nil, fmt.Errorf("failed to insert status log: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit admission: %w", err)
	}

	return order, nil
}

// nextOrderNumber returns the next daily order number (ORD_YYYYMMDD_NNN).
// The UNIQUE constraint on orders.number turns races between concurrent
// admissions into retryable conflicts.
func (s *Service) nextOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	today := time.Now().UTC().Format("20060102")
	var sequence int
	err := tx.QueryRow(ctx, database.GetNextOrderNumberSQL, fmt.Sprintf("ORD_%s_%%", today)).Scan(&sequence)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD_%s_%03d", today, sequence), nil
}

func (s *Service) publishAdmission(ctx context.Context, order *models.Order, requestID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishOrderEvent(ctx, models.NewOrderCreatedEvent(order)); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order created event", requestID, err, map[string]interface{}{
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
		s.logger.Error("notification_publish_failed", "Failed to publish admission notification", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}
}

// HealthCheck reports whether the persistence boundary is reachable.
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.db.Ping(ctx) == nil
}

// isRetryable reports whether the error is a transient commit conflict:
// serialization failure, deadlock, or an order-number collision between
// concurrent admissions.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

func admissionOutcome(err error) string {
	switch {
	case errors.Is(err, models.ErrSlotFull):
		return "slot_full"
	case errors.Is(err, models.ErrStoreClosed):
		return "store_closed"
	case isRetryable(err):
		return "conflict"
	default:
		return "error"
	}
}
