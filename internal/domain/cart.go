package domain

import "time"

// SelectedAddOn is a price snapshot of an add-on chosen when the
// line item was added. It is never re-read from the catalog.
type SelectedAddOn struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CartItem is one line of a cart. Price is the unit price captured
// at add time; availability filtering happens at read time instead
// of re-pricing.
type CartItem struct {
	ProductID      string          `json:"product_id"`
	Quantity       int             `json:"quantity"`
	Price          int64           `json:"price"`
	SelectedAddOns []SelectedAddOn `json:"selected_addons,omitempty"`
}

// Subtotal is the line's contribution to the cart total: unit price
// plus each selected add-on, multiplied by quantity.
func (i CartItem) Subtotal() int64 {
	unit := i.Price
	for _, a := range i.SelectedAddOns {
		unit += a.Price
	}
	return unit * int64(i.Quantity)
}

// Cart holds one user's line items as a single document. A cart is
// created lazily on first access and emptied, never deleted.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Total sums the subtotals of all line items.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}
