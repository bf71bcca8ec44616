package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brewhub/brewhub/internal/auth"
	"github.com/brewhub/brewhub/internal/domain"
	"github.com/brewhub/brewhub/internal/validate"
)

// UserStore is what the handlers need from the repository.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
}

type Handler struct {
	users  UserStore
	logger *slog.Logger
}

func NewHandler(users UserStore, logger *slog.Logger) *Handler {
	return &Handler{
		users:  users,
		logger: logger,
	}
}

func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

type updateProfileRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fieldErrs := validate.FieldErrors{}
	if req.Name != nil && *req.Name == "" {
		fieldErrs.Add("name", "The name field is required.")
	}
	if req.Email != nil {
		if !validate.Email(*req.Email) {
			fieldErrs.Add("email", "The email must be a valid email address.")
		} else {
			taken, err := h.users.EmailTaken(r.Context(), *req.Email, user.ID)
			if err != nil {
				h.logger.Error("failed to check email uniqueness", "error", err)
				h.writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if taken {
				fieldErrs.Add("email", "The email has already been taken.")
			}
		}
	}
	if fieldErrs.Any() {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return
	}

	updated := *user
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Phone != nil {
		updated.Phone = *req.Phone
	}
	if req.Address != nil {
		updated.Address = *req.Address
	}

	if err := h.users.Update(r.Context(), &updated); err != nil {
		h.logger.Error("failed to update profile", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}
