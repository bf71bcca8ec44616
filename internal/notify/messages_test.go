package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewhub/brewhub/internal/domain"
)

func TestConfirmationEmail(t *testing.T) {
	eta := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	event := domain.OrderCreatedEvent{
		OrderID:       "o1",
		OrderNumber:   "BHAAAAAAAAAAAAA123",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []domain.OrderItem{
			{
				ProductID:   "latte",
				ProductName: "Latte",
				Quantity:    2,
				Price:       400,
				SelectedAddOns: []domain.SelectedAddOn{
					{Name: "Extra Shot", Price: 75},
				},
			},
		},
		TotalPrice:              950,
		Status:                  domain.OrderStatusReceived,
		EstimatedCompletionTime: &eta,
	}

	email := ConfirmationEmail(event)

	assert.Equal(t, "ada@example.com", email.To)
	assert.Equal(t, "Order Confirmation - BHAAAAAAAAAAAAA123", email.Subject)
	assert.Contains(t, email.Body, "Hello Ada!")
	assert.Contains(t, email.Body, "Order Number: BHAAAAAAAAAAAAA123")
	assert.Contains(t, email.Body, "2 x Latte - $8.00")
	assert.Contains(t, email.Body, "+ Extra Shot - $1.50")
	assert.Contains(t, email.Body, "Total: $9.50")
	assert.Contains(t, email.Body, "Estimated Ready Time: 2:30 PM")
}

func TestStatusEmail(t *testing.T) {
	eta := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

	t.Run("in-progress status carries the eta line", func(t *testing.T) {
		email := StatusEmail(domain.OrderStatusChangedEvent{
			OrderNumber:             "BH0000000000000000",
			CustomerName:            "Ada",
			CustomerEmail:           "ada@example.com",
			PreviousStatus:          domain.OrderStatusReceived,
			Status:                  domain.OrderStatusPreparing,
			EstimatedCompletionTime: &eta,
		})

		assert.Equal(t, "Order Update - BH0000000000000000", email.Subject)
		assert.Contains(t, email.Body, "New Status: Preparing")
		assert.Contains(t, email.Body, "Our baristas are now preparing your order with care.")
		assert.Contains(t, email.Body, "Estimated Ready Time: 2:30 PM")
	})

	t.Run("terminal status drops the eta line", func(t *testing.T) {
		email := StatusEmail(domain.OrderStatusChangedEvent{
			CustomerName:            "Ada",
			Status:                  domain.OrderStatusCompleted,
			EstimatedCompletionTime: &eta,
		})

		assert.Contains(t, email.Body, "Your order has been completed. We hope you enjoyed it!")
		assert.NotContains(t, email.Body, "Estimated Ready Time")
	})

	t.Run("missing eta drops the line too", func(t *testing.T) {
		email := StatusEmail(domain.OrderStatusChangedEvent{
			CustomerName: "Ada",
			Status:       domain.OrderStatusReadyForPickup,
		})

		assert.Contains(t, email.Body, "ready for pickup")
		assert.NotContains(t, email.Body, "Estimated Ready Time")
	})
}

func TestStatusLabel(t *testing.T) {
	cases := map[domain.OrderStatus]string{
		domain.OrderStatusPending:        "Pending",
		domain.OrderStatusReceived:       "Received",
		domain.OrderStatusPreparing:      "Preparing",
		domain.OrderStatusReadyForPickup: "Ready for Pickup",
		domain.OrderStatusCompleted:      "Completed",
		domain.OrderStatusCancelled:      "Cancelled",
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusLabel(status))
	}
	assert.Equal(t, "mystery", StatusLabel(domain.OrderStatus("mystery")))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0.00", formatPrice(0))
	assert.Equal(t, "$0.05", formatPrice(5))
	assert.Equal(t, "$4.75", formatPrice(475))
	assert.Equal(t, "$12.00", formatPrice(1200))
}

type stubPublisher struct {
	keys []string
	err  error
}

func (p *stubPublisher) Publish(_ context.Context, key string, _ any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	return nil
}

func TestDispatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("routes events by topic", func(t *testing.T) {
		created := &stubPublisher{}
		status := &stubPublisher{}
		d := NewDispatcher(created, status, logger)

		d.OrderCreated(context.Background(), domain.OrderCreatedEvent{OrderID: "o1"})
		d.OrderStatusChanged(context.Background(), domain.OrderStatusChangedEvent{OrderID: "o2"})

		assert.Equal(t, []string{"o1"}, created.keys)
		assert.Equal(t, []string{"o2"}, status.keys)
	})

	t.Run("nil dispatcher is safe", func(t *testing.T) {
		var d *Dispatcher

		require.NotPanics(t, func() {
			d.OrderCreated(context.Background(), domain.OrderCreatedEvent{})
			d.OrderStatusChanged(context.Background(), domain.OrderStatusChangedEvent{})
		})
	})

	t.Run("publish errors are swallowed", func(t *testing.T) {
		created := &stubPublisher{err: errors.New("broker down")}
		d := NewDispatcher(created, created, logger)

		require.NotPanics(t, func() {
			d.OrderCreated(context.Background(), domain.OrderCreatedEvent{OrderID: "o1"})
		})
	})
}
