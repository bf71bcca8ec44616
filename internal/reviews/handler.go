package reviews

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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

	review, err := h.service.Create(r.Context(), user, in)
	if err != nil {
		var fieldErrs validate.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			h.writeFieldErrors(w, fieldErrs)
		case errors.Is(err, ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "Order not found or does not belong to you.")
		case errors.Is(err, ErrOrderNotCompleted):
			h.writeError(w, http.StatusBadRequest, "You can only review items from completed orders.")
		case errors.Is(err, ErrLineItemNotFound):
			h.writeError(w, http.StatusNotFound, "Order item not found.")
		case errors.Is(err, ErrProductMismatch):
			h.writeError(w, http.StatusBadRequest, "Product ID does not match the order item.")
		case errors.Is(err, ErrAlreadyReviewed):
			h.writeError(w, http.StatusBadRequest, "You have already reviewed this order item.")
		default:
			h.logger.Error("failed to create review", "error", err, "user_id", user.ID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("review created", "review_id", review.ID, "order_id", review.OrderID,
		"order_item_index", review.OrderItemIndex)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Review submitted successfully.",
		"review":  review,
	})
}

func (h *Handler) HandleOrderReviewStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	orderID := r.PathValue("id")
	if orderID == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	status, err := h.service.StatusForOrder(r.Context(), user, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			h.writeError(w, http.StatusNotFound, "Order not found or does not belong to you.")
			return
		}
		h.logger.Error("failed to load review status", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) HandleProductReviews(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", defaultPerPage)

	result, err := h.service.ForProduct(r.Context(), productID, page, perPage)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			h.writeError(w, http.StatusNotFound, "Product not found.")
			return
		}
		h.logger.Error("failed to list product reviews", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
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
