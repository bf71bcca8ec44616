// Package worker turns order events into customer emails. Delivery
// is at-most-once: a failed send is logged and the event is
// committed anyway, so a broken email service never wedges the
// stream or replays duplicate mail.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/brewhub/brewhub/internal/domain"
	"github.com/brewhub/brewhub/internal/notify"
)

type NotificationHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *NotificationHandler) HandleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("skipping malformed order created event", "error", err)
		return nil
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "order_number", event.OrderNumber)

	email := notify.ConfirmationEmail(event)
	if err := h.sendEmail(ctx, email); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return nil
	}

	h.logger.Info("confirmation email sent", "order_id", event.OrderID, "to", email.To)
	return nil
}

func (h *NotificationHandler) HandleStatusChanged(ctx context.Context, payload []byte) error {
	var event domain.OrderStatusChangedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("skipping malformed status changed event", "error", err)
		return nil
	}

	h.logger.Info("processing status changed event", "order_id", event.OrderID,
		"previous_status", event.PreviousStatus, "status", event.Status)

	email := notify.StatusEmail(event)
	if err := h.sendEmail(ctx, email); err != nil {
		h.logger.Error("failed to send status email", "error", err, "order_id", event.OrderID)
		return nil
	}

	h.logger.Info("status email sent", "order_id", event.OrderID, "to", email.To, "status", event.Status)
	return nil
}

func (h *NotificationHandler) sendEmail(ctx context.Context, email notify.Email) error {
	body := map[string]string{
		"to":      email.To,
		"subject": email.Subject,
		"body":    email.Body,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
