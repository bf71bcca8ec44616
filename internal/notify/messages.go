package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/brewhub/brewhub/internal/domain"
)

// StatusLabel is the human-readable name of a status.
func StatusLabel(status domain.OrderStatus) string {
	switch status {
	case domain.OrderStatusPending:
		return "Pending"
	case domain.OrderStatusReceived:
		return "Received"
	case domain.OrderStatusPreparing:
		return "Preparing"
	case domain.OrderStatusReadyForPickup:
		return "Ready for Pickup"
	case domain.OrderStatusCompleted:
		return "Completed"
	case domain.OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(status)
	}
}

// StatusMessage is the customer-facing line for a status transition.
func StatusMessage(status domain.OrderStatus) string {
	switch status {
	case domain.OrderStatusReceived:
		return "We have received your order and it will be prepared shortly."
	case domain.OrderStatusPreparing:
		return "Our baristas are now preparing your order with care."
	case domain.OrderStatusReadyForPickup:
		return "Great news! Your order is ready for pickup. Please come to the counter."
	case domain.OrderStatusCompleted:
		return "Your order has been completed. We hope you enjoyed it!"
	case domain.OrderStatusCancelled:
		return "Your order has been cancelled. If you have questions, please contact us."
	default:
		return "Your order status has been updated."
	}
}

type Email struct {
	To      string
	Subject string
	Body    string
}

// ConfirmationEmail composes the checkout confirmation from the
// event payload alone.
func ConfirmationEmail(event domain.OrderCreatedEvent) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", event.CustomerName)
	fmt.Fprintf(&b, "Thank you for your order. Here is your summary.\n\n")
	fmt.Fprintf(&b, "Order Number: %s\n\n", event.OrderNumber)

	for _, item := range event.Items {
		fmt.Fprintf(&b, "%d x %s - %s\n", item.Quantity, item.ProductName, formatPrice(item.Price*int64(item.Quantity)))
		for _, addon := range item.SelectedAddOns {
			fmt.Fprintf(&b, "    + %s - %s\n", addon.Name, formatPrice(addon.Price*int64(item.Quantity)))
		}
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", formatPrice(event.TotalPrice))
	writeETALine(&b, event.Status, event.EstimatedCompletionTime)
	b.WriteString("\nThank you for choosing Brewhub!\nThe Brewhub Team\n")

	return Email{
		To:      event.CustomerEmail,
		Subject: "Order Confirmation - " + event.OrderNumber,
		Body:    b.String(),
	}
}

// StatusEmail composes the update email for an effective status
// change. The ETA line appears only while the order is still in
// progress.
func StatusEmail(event domain.OrderStatusChangedEvent) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", event.CustomerName)
	b.WriteString("Your order status has been updated.\n\n")
	fmt.Fprintf(&b, "Order Number: %s\n", event.OrderNumber)
	fmt.Fprintf(&b, "New Status: %s\n\n", StatusLabel(event.Status))
	b.WriteString(StatusMessage(event.Status) + "\n")
	writeETALine(&b, event.Status, event.EstimatedCompletionTime)
	b.WriteString("\nThank you for choosing Brewhub!\nThe Brewhub Team\n")

	return Email{
		To:      event.CustomerEmail,
		Subject: fmt.Sprintf("Order Update - %s", event.OrderNumber),
		Body:    b.String(),
	}
}

func writeETALine(b *strings.Builder, status domain.OrderStatus, eta *time.Time) {
	if eta == nil || status.Terminal() {
		return
	}
	fmt.Fprintf(b, "\nEstimated Ready Time: %s\n", eta.Format("3:04 PM"))
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
