package domain

import "time"

// AddOn is an optional priced modifier offered on a product
// (extra shot, alternative milk, syrup).
type AddOn struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Available   bool      `json:"available"`
	AddOns      []AddOn   `json:"addons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductWithStats is a catalog product enriched with aggregated
// review data for menu display.
type ProductWithStats struct {
	Product
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}
