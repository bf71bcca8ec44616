// Package auth attaches the authenticated user to the request
// context from an opaque bearer credential. The identity provider
// that issues tokens is external to this service.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/brewhub/brewhub/internal/domain"
)

type contextKey struct{}

// UserFrom returns the authenticated user attached by Middleware.
func UserFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(contextKey{}).(*domain.User)
	return user
}

// WithUser attaches a user to the context the way Authenticate does.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserResolver resolves a bearer token to a user; nil means the
// token is unknown.
type UserResolver interface {
	UserForToken(ctx context.Context, token string) (*domain.User, error)
}

type Middleware struct {
	resolver UserResolver
	logger   *slog.Logger
}

func NewMiddleware(resolver UserResolver, logger *slog.Logger) *Middleware {
	return &Middleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate rejects requests without a valid bearer token and
// stores the resolved user in the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		user, err := m.resolver.UserForToken(r.Context(), token)
		if err != nil {
			m.logger.Error("failed to resolve token", "error", err)
			writeMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if user == nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// RequireAdmin gates order-management routes on the admin flag. It
// must run inside Authenticate.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil || !user.Admin {
			writeMessage(w, http.StatusForbidden, "Unauthorized. Admin access required.")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
