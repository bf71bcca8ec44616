package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/brewhub/brewhub/internal/domain"
)

// Repository stores one cart document per user. The items array is
// read and written whole.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Create(ctx context.Context, userID string) (*domain.Cart, error)
	SaveItems(ctx context.Context, cartID string, items []domain.CartItem) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{}
	var items []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, items, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &items, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return cart, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID string) (*domain.Cart, error) {
	now := time.Now().UTC()
	cart := &domain.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, items, created_at, updated_at)
		VALUES ($1, $2, '[]'::jsonb, $3, $3)
	`, cart.ID, cart.UserID, now)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *PostgresRepository) SaveItems(ctx context.Context, cartID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE carts SET items = $1, updated_at = NOW()
		WHERE id = $2
	`, data, cartID)
	return err
}
