package domain

import "time"

// Review rates one purchased line item of a completed order. The
// order line index joins it to the item; at most one review may
// exist per (user, order, line index).
type Review struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProductID      string    `json:"product_id"`
	OrderID        string    `json:"order_id"`
	OrderItemIndex int       `json:"order_item_index"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	UserName       string    `json:"user_name"`
	CreatedAt      time.Time `json:"created_at"`
}
