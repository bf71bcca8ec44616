package reviews

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/brewhub/brewhub/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByOrderLine(ctx context.Context, userID, orderID string, itemIndex int) (*domain.Review, error)
	ListByUserAndOrder(ctx context.Context, userID, orderID string) ([]domain.Review, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error)
	ProductStats(ctx context.Context, productID string) (average *float64, count int, err error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, review *domain.Review) error {
	review.ID = uuid.New().String()
	review.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, product_id, order_id, order_item_index,
		                     rating, comment, user_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, review.ID, review.UserID, review.ProductID, review.OrderID, review.OrderItemIndex,
		review.Rating, review.Comment, review.UserName, review.CreatedAt)
	return err
}

func (r *PostgresRepository) GetByOrderLine(ctx context.Context, userID, orderID string, itemIndex int) (*domain.Review, error) {
	review := &domain.Review{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, order_id, order_item_index, rating, comment, user_name, created_at
		FROM reviews
		WHERE user_id = $1 AND order_id = $2 AND order_item_index = $3
	`, userID, orderID, itemIndex).Scan(&review.ID, &review.UserID, &review.ProductID,
		&review.OrderID, &review.OrderItemIndex, &review.Rating, &review.Comment,
		&review.UserName, &review.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return review, nil
}

func (r *PostgresRepository) ListByUserAndOrder(ctx context.Context, userID, orderID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, order_id, order_item_index, rating, comment, user_name, created_at
		FROM reviews
		WHERE user_id = $1 AND order_id = $2
	`, userID, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectReviews(rows)
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, order_id, order_item_index, rating, comment, user_name, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectReviews(rows)
}

func (r *PostgresRepository) ProductStats(ctx context.Context, productID string) (*float64, int, error) {
	var avg sql.NullFloat64
	var count int

	err := r.db.QueryRowContext(ctx, `
		SELECT ROUND(AVG(rating)::numeric, 1), COUNT(id)
		FROM reviews
		WHERE product_id = $1
	`, productID).Scan(&avg, &count)
	if err != nil {
		return nil, 0, err
	}

	if !avg.Valid {
		return nil, count, nil
	}
	return &avg.Float64, count, nil
}

func collectReviews(rows *sql.Rows) ([]domain.Review, error) {
	reviews := []domain.Review{}
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(&review.ID, &review.UserID, &review.ProductID, &review.OrderID,
			&review.OrderItemIndex, &review.Rating, &review.Comment, &review.UserName,
			&review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}
