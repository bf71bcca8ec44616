package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/brewhub/brewhub/internal/auth"
	"github.com/brewhub/brewhub/internal/validate"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Create(r.Context(), user, in)
	if err != nil {
		var fieldErrs validate.FieldErrors
		if errors.As(err, &fieldErrs) {
			h.writeFieldErrors(w, fieldErrs)
			return
		}
		h.logger.Error("failed to create order", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	orders, err := h.service.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			h.writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// HandleAdminList returns every order, newest first. Admin only.
func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list all orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

type updateOrderRequest struct {
	Status                  *string         `json:"status"`
	PaymentStatus           *string         `json:"payment_status"`
	EstimatedCompletionTime json.RawMessage `json:"estimated_completion_time"`
}

// HandleUpdate applies a partial admin update. A present-but-null
// estimated_completion_time clears the ETA; an absent field leaves
// it untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := UpdateInput{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	}

	if len(req.EstimatedCompletionTime) > 0 {
		in.SetETA = true
		if string(req.EstimatedCompletionTime) != "null" {
			var eta time.Time
			if err := json.Unmarshal(req.EstimatedCompletionTime, &eta); err != nil {
				fieldErrs := validate.FieldErrors{}
				fieldErrs.Add("estimated_completion_time", "The estimated completion time is not a valid date.")
				h.writeFieldErrors(w, fieldErrs)
				return
			}
			in.ETA = &eta
		}
	}

	order, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		var fieldErrs validate.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			h.writeFieldErrors(w, fieldErrs)
		case errors.Is(err, ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "Order not found")
		default:
			h.logger.Error("failed to update order", "error", err, "order_id", id)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, order)
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

func (h *Handler) writeFieldErrors(w http.ResponseWriter, errs validate.FieldErrors) {
	h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}
