package tracking

import (
	"context"
	"fmt"

	"canteen-system/internal/logger"
	"canteen-system/internal/messaging"
	"canteen-system/internal/models"
)

// Feed consumes the order_events queue and pushes each event into the hub,
// keeping the live projections current with bounded staleness.
type Feed struct {
	consumer *messaging.Consumer
	hub      *Hub
	logger   *logger.Logger
}

// NewFeed creates the change feed bridge.
func NewFeed(consumer *messaging.Consumer, hub *Hub, log *logger.Logger) *Feed {
	return &Feed{
		consumer: consumer,
		hub:      hub,
		logger:   log,
	}
}

// Run consumes order events until the context is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	return f.consumer.StartConsuming(ctx, func(ctx context.Context, body []byte) error {
		var event models.OrderEvent
		if err := messaging.ParseMessage(body, &event); err != nil {
			// A malformed event will never parse; requeueing would loop.
			f.logger.Error("event_parse_failed", "Discarding malformed order event", "", err, nil)
			return nil
		}

		f.hub.Dispatch(&event)
		return nil
	})
}

// Close stops the underlying consumer.
func (f *Feed) Close() error {
	if f.consumer == nil {
		return nil
	}
	if err := f.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close feed consumer: %w", err)
	}
	return nil
}
