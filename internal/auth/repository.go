package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	"github.com/brewhub/brewhub/internal/domain"
)

// TokenRepository resolves opaque bearer tokens to users. Tokens are
// provisioned by the identity provider and stored hashed; issuance
// is not an API concern.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// UserForToken returns the user owning the token, or nil when the
// token is unknown. Touches last_used_at best-effort.
func (r *TokenRepository) UserForToken(ctx context.Context, token string) (*domain.User, error) {
	sum := sha256.Sum256([]byte(token))
	hash := hex.EncodeToString(sum[:])

	user := &domain.User{}
	var phone, address sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.phone, u.address, u.is_admin, u.created_at
		FROM api_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_hash = $1
	`, hash).Scan(&user.ID, &user.Name, &user.Email, &phone, &address, &user.Admin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.Phone = phone.String
	user.Address = address.String

	_, _ = r.db.ExecContext(ctx, `
		UPDATE api_tokens SET last_used_at = NOW() WHERE token_hash = $1
	`, hash)

	return user, nil
}
