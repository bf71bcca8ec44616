package catalog

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/brewhub/brewhub/internal/domain"
)

// ProductRepository reads the catalog. Products are mutated by
// catalog management outside this service; the storefront only
// reads them.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}
	var addons []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category, image_url, available, addons, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Category, &product.ImageURL, &product.Available, &addons, &product.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &product.AddOns); err != nil {
			return nil, err
		}
	}

	return product, nil
}

// ListWithStats returns every product joined with its review
// average and count in a single query.
func (r *ProductRepository) ListWithStats(ctx context.Context) ([]domain.ProductWithStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.price, p.category, p.image_url, p.available,
		       p.addons, p.created_at,
		       ROUND(AVG(rv.rating)::numeric, 1), COUNT(rv.id)
		FROM products p
		LEFT JOIN reviews rv ON rv.product_id = p.id
		GROUP BY p.id
		ORDER BY p.category, p.name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.ProductWithStats{}
	for rows.Next() {
		var p domain.ProductWithStats
		var addons []byte
		var avg sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.ImageURL, &p.Available, &addons, &p.CreatedAt, &avg, &p.ReviewCount); err != nil {
			return nil, err
		}
		if len(addons) > 0 {
			if err := json.Unmarshal(addons, &p.AddOns); err != nil {
				return nil, err
			}
		}
		if avg.Valid {
			p.AverageRating = &avg.Float64
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// GetWithStats returns one product with its review aggregate, or
// nil when the product does not exist.
func (r *ProductRepository) GetWithStats(ctx context.Context, id string) (*domain.ProductWithStats, error) {
	p := &domain.ProductWithStats{}
	var addons []byte
	var avg sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.description, p.price, p.category, p.image_url, p.available,
		       p.addons, p.created_at,
		       ROUND(AVG(rv.rating)::numeric, 1), COUNT(rv.id)
		FROM products p
		LEFT JOIN reviews rv ON rv.product_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.ImageURL, &p.Available, &addons, &p.CreatedAt, &avg, &p.ReviewCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &p.AddOns); err != nil {
			return nil, err
		}
	}
	if avg.Valid {
		p.AverageRating = &avg.Float64
	}

	return p, nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM products ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}
