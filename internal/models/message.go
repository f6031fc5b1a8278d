package models

import (
	"fmt"
	"time"
)

// Event types carried on the order_events topic exchange.
const (
	EventOrderCreated  = "order_created"
	EventStatusChanged = "status_changed"
)

// OrderEvent is published on every admission and status transition. The
// tracking service consumes these to keep the live feeds current.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      string      `json:"user_id"`
	OldStatus   OrderStatus `json:"old_status,omitempty"`
	NewStatus   OrderStatus `json:"new_status"`
	SlotID      string      `json:"slot_id"`
	TotalAmount float64     `json:"total_amount,omitempty"`
	ChangedBy   string      `json:"changed_by,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// StatusNotification is the fire-and-forget message sent to the
// notifications fanout for the pickup-counter display.
type StatusNotification struct {
	OrderNumber  string      `json:"order_number"`
	CustomerName string      `json:"customer_name"`
	NewStatus    OrderStatus `json:"new_status"`
	Timestamp    time.Time   `json:"timestamp"`
}

// NewOrderCreatedEvent builds the event published after a successful
// admission.
func NewOrderCreatedEvent(order *Order) *OrderEvent {
	return &OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		NewStatus:   order.Status,
		SlotID:      order.SlotID,
		TotalAmount: order.TotalAmount,
		Timestamp:   time.Now().UTC(),
	}
}

// NewStatusChangedEvent builds the event published after a committed
// status transition.
func NewStatusChangedEvent(order *Order, from OrderStatus, changedBy string) *OrderEvent {
	return &OrderEvent{
		Type:        EventStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		OldStatus:   from,
		NewStatus:   order.Status,
		SlotID:      order.SlotID,
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
	}
}

// RoutingKey returns the topic routing key for this event. Feeds subscribe
// per user or with a wildcard for the staff view.
func (e *OrderEvent) RoutingKey() string {
	return fmt.Sprintf("orders.%s", e.UserID)
}
