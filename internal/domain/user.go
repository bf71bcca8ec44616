package domain

import "time"

// User is managed by the identity provider; the storefront reads it
// for ownership checks and writes only the phone sync at checkout
// and profile edits.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Admin     bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
