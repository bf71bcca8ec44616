package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewhub/brewhub/internal/domain"
)

type sentEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func emailServer(t *testing.T, status int, sent *[]sentEmail) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/send", r.URL.Path)

		var email sentEmail
		require.NoError(t, json.NewDecoder(r.Body).Decode(&email))
		*sent = append(*sent, email)

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func testHandler(url string) *NotificationHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewNotificationHandler(url, http.DefaultClient, logger)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleOrderCreated(t *testing.T) {
	event := domain.OrderCreatedEvent{
		OrderID:       "o1",
		OrderNumber:   "BH0000000000000000",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []domain.OrderItem{
			{ProductID: "latte", ProductName: "Latte", Quantity: 1, Price: 400},
		},
		TotalPrice: 400,
		Status:     domain.OrderStatusReceived,
	}

	t.Run("sends the confirmation email", func(t *testing.T) {
		var sent []sentEmail
		server := emailServer(t, http.StatusOK, &sent)
		h := testHandler(server.URL)

		err := h.HandleOrderCreated(context.Background(), mustJSON(t, event))
		require.NoError(t, err)

		require.Len(t, sent, 1)
		assert.Equal(t, "ada@example.com", sent[0].To)
		assert.Equal(t, "Order Confirmation - BH0000000000000000", sent[0].Subject)
		assert.Contains(t, sent[0].Body, "1 x Latte")
	})

	t.Run("malformed payload is skipped, not retried", func(t *testing.T) {
		var sent []sentEmail
		server := emailServer(t, http.StatusOK, &sent)
		h := testHandler(server.URL)

		err := h.HandleOrderCreated(context.Background(), []byte("{not json"))
		require.NoError(t, err)
		assert.Empty(t, sent)
	})

	t.Run("delivery failure is swallowed", func(t *testing.T) {
		var sent []sentEmail
		server := emailServer(t, http.StatusInternalServerError, &sent)
		h := testHandler(server.URL)

		err := h.HandleOrderCreated(context.Background(), mustJSON(t, event))
		require.NoError(t, err)
	})

	t.Run("unreachable email service is swallowed", func(t *testing.T) {
		h := testHandler("http://127.0.0.1:1")

		err := h.HandleOrderCreated(context.Background(), mustJSON(t, event))
		require.NoError(t, err)
	})
}

func TestHandleStatusChanged(t *testing.T) {
	event := domain.OrderStatusChangedEvent{
		OrderID:        "o1",
		OrderNumber:    "BH0000000000000000",
		CustomerName:   "Ada",
		CustomerEmail:  "ada@example.com",
		PreviousStatus: domain.OrderStatusReceived,
		Status:         domain.OrderStatusReadyForPickup,
	}

	t.Run("sends the status email", func(t *testing.T) {
		var sent []sentEmail
		server := emailServer(t, http.StatusOK, &sent)
		h := testHandler(server.URL)

		err := h.HandleStatusChanged(context.Background(), mustJSON(t, event))
		require.NoError(t, err)

		require.Len(t, sent, 1)
		assert.Equal(t, "Order Update - BH0000000000000000", sent[0].Subject)
		assert.Contains(t, sent[0].Body, "New Status: Ready for Pickup")
	})

	t.Run("malformed payload is skipped", func(t *testing.T) {
		var sent []sentEmail
		server := emailServer(t, http.StatusOK, &sent)
		h := testHandler(server.URL)

		err := h.HandleStatusChanged(context.Background(), []byte("nope"))
		require.NoError(t, err)
		assert.Empty(t, sent)
	})
}
