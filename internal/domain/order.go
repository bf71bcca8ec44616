package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusReceived       OrderStatus = "received"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// SettableStatuses are the statuses an admin update may write.
// pending is an entry state only, assigned at checkout for unpaid
// orders.
var SettableStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Terminal reports whether no further transition is expected in
// normal operation. The status machine does not enforce this; it
// only controls ETA display in notifications.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
}

// OrderItem is a line of an order: the cart line snapshot plus a
// denormalized product name so display and email never depend on
// live catalog state.
type OrderItem struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	Price          int64           `json:"price"`
	SelectedAddOns []SelectedAddOn `json:"selected_addons,omitempty"`
}

// Order is immutable after checkout except for status, payment
// status, and the estimated completion time.
type Order struct {
	ID                      string        `json:"id"`
	UserID                  string        `json:"user_id"`
	OrderNumber             string        `json:"order_number"`
	Items                   []OrderItem   `json:"items"`
	TotalPrice              int64         `json:"total_price"`
	Status                  OrderStatus   `json:"status"`
	PaymentStatus           PaymentStatus `json:"payment_status"`
	CustomerName            string        `json:"customer_name"`
	CustomerEmail           string        `json:"customer_email"`
	CustomerPhone           string        `json:"customer_phone"`
	EstimatedCompletionTime *time.Time    `json:"estimated_completion_time"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}
