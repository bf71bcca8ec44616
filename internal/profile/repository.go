package profile

import (
	"context"
	"database/sql"

	"github.com/brewhub/brewhub/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	var phone, address sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, is_admin, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Name, &user.Email, &phone, &address, &user.Admin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.Phone = phone.String
	user.Address = address.String

	return user, nil
}

// EmailTaken reports whether another user already owns the address.
func (r *UserRepository) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)
	`, email, excludeUserID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, phone = $3, address = $4
		WHERE id = $5
	`, user.Name, user.Email, user.Phone, user.Address, user.ID)
	return err
}

// UpdatePhone is the silent profile sync done at checkout when the
// customer phone differs from the stored one.
func (r *UserRepository) UpdatePhone(ctx context.Context, userID, phone string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET phone = $1 WHERE id = $2
	`, phone, userID)
	return err
}
