package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"canteen-system/internal/logger"
	"canteen-system/internal/messaging"
	"canteen-system/internal/models"
)

// Subscriber consumes the notifications fanout and renders pickup-counter
// display messages. Delivery is fire-and-forget; it is not required for
// order correctness.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber.
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
	}
}

// Start consumes notifications until the context is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	return nil
}

// handleNotification processes one status notification.
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var notification models.StatusNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	fmt.Println(FormatNotification(&notification))

	s.logger.Info("notification_displayed", "Notification displayed", requestID, map[string]interface{}{
		"order_number": notification.OrderNumber,
		"new_status":   string(notification.NewStatus),
	})
	return nil
}

// FormatNotification renders a human-readable display line for a status
// change.
func FormatNotification(n *models.StatusNotification) string {
	timestamp := n.Timestamp.Format("2006-01-02 15:04:05")

	switch n.NewStatus {
	case models.StatusPendingApproval:
		return fmt.Sprintf("[%s] Order %s received for %s, awaiting payment verification.",
			timestamp, n.OrderNumber, n.CustomerName)
	case models.StatusConfirmed:
		return fmt.Sprintf("[%s] Order %s confirmed, payment verified.",
			timestamp, n.OrderNumber)
	case models.StatusPreparing:
		return fmt.Sprintf("[%s] Order %s is now being prepared.",
			timestamp, n.OrderNumber)
	case models.StatusReady:
		return fmt.Sprintf("[%s] Order %s is ready for pickup, %s!",
			timestamp, n.OrderNumber, n.CustomerName)
	case models.StatusCompleted:
		return fmt.Sprintf("[%s] Order %s has been picked up.",
			timestamp, n.OrderNumber)
	case models.StatusCancelled:
		return fmt.Sprintf("[%s] Order %s has been cancelled.",
			timestamp, n.OrderNumber)
	default:
		return fmt.Sprintf("[%s] Order %s status changed to %s.",
			timestamp, n.OrderNumber, n.NewStatus)
	}
}

// Close stops the subscriber's consumer.
func (s *Subscriber) Close() error {
	if s.consumer != nil {
		return s.consumer.Close()
	}
	return nil
}
