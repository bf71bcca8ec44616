package domain

import "time"

// OrderCreatedEvent is published after checkout persists an order.
// It carries everything the notification worker needs so delivery
// never reads the database.
type OrderCreatedEvent struct {
	OrderID                 string      `json:"order_id"`
	OrderNumber             string      `json:"order_number"`
	CustomerName            string      `json:"customer_name"`
	CustomerEmail           string      `json:"customer_email"`
	Items                   []OrderItem `json:"items"`
	TotalPrice              int64       `json:"total_price"`
	Status                  OrderStatus `json:"status"`
	EstimatedCompletionTime *time.Time  `json:"estimated_completion_time"`
	Timestamp               time.Time   `json:"timestamp"`
}

// OrderStatusChangedEvent is published on every effective status
// transition. A write equal to the current status publishes nothing.
type OrderStatusChangedEvent struct {
	OrderID                 string      `json:"order_id"`
	OrderNumber             string      `json:"order_number"`
	CustomerName            string      `json:"customer_name"`
	CustomerEmail           string      `json:"customer_email"`
	PreviousStatus          OrderStatus `json:"previous_status"`
	Status                  OrderStatus `json:"status"`
	EstimatedCompletionTime *time.Time  `json:"estimated_completion_time"`
	Timestamp               time.Time   `json:"timestamp"`
}
