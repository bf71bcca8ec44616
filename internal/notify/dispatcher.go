// Package notify publishes order events for the delivery worker and
// owns the customer-facing email copy. Publishing is best-effort:
// a broker failure is logged and never surfaces to the request that
// triggered it.
package notify

import (
	"context"
	"log/slog"

	"github.com/brewhub/brewhub/internal/domain"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// EventPublisher is satisfied by messaging.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Dispatcher struct {
	created       EventPublisher
	statusChanged EventPublisher
	logger        *slog.Logger
}

func NewDispatcher(created, statusChanged EventPublisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		created:       created,
		statusChanged: statusChanged,
		logger:        logger,
	}
}

// OrderCreated publishes the checkout confirmation event. Safe to
// call on a nil dispatcher (no broker configured).
func (d *Dispatcher) OrderCreated(ctx context.Context, event domain.OrderCreatedEvent) {
	if d == nil || d.created == nil {
		return
	}
	if err := d.created.Publish(ctx, event.OrderID, event); err != nil {
		d.logger.Error("failed to publish order created event", "error", err, "order_id", event.OrderID)
	}
}

// OrderStatusChanged publishes a status transition event. Safe to
// call on a nil dispatcher.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) {
	if d == nil || d.statusChanged == nil {
		return
	}
	if err := d.statusChanged.Publish(ctx, event.OrderID, event); err != nil {
		d.logger.Error("failed to publish order status changed event", "error", err, "order_id", event.OrderID)
	}
}
