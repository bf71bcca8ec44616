package orders

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/brewhub/brewhub/internal/domain"
)

// Repository persists orders. Line items live as one JSONB document
// per order; only status, payment status, and the ETA are mutable.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = uuid.New().String()

	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, order_number, items, total_price, status,
		                    payment_status, customer_name, customer_email, customer_phone,
		                    estimated_completion_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`, order.ID, order.UserID, order.OrderNumber, items, order.TotalPrice, order.Status,
		order.PaymentStatus, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.EstimatedCompletionTime, order.CreatedAt)
	return err
}

const orderColumns = `
	id, user_id, order_number, items, total_price, status, payment_status,
	customer_name, customer_email, customer_phone, estimated_completion_time,
	created_at, updated_at
`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return order, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectOrders(rows)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectOrders(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, order *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, estimated_completion_time = $3, updated_at = NOW()
		WHERE id = $4
	`, order.Status, order.PaymentStatus, order.EstimatedCompletionTime, order.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var items []byte
	var eta sql.NullTime

	err := row.Scan(&order.ID, &order.UserID, &order.OrderNumber, &items, &order.TotalPrice,
		&order.Status, &order.PaymentStatus, &order.CustomerName, &order.CustomerEmail,
		&order.CustomerPhone, &eta, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	if eta.Valid {
		t := eta.Time
		order.EstimatedCompletionTime = &t
	}

	return order, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
