package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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

func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	view, err := h.service.View(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to view cart", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	ProductID      string   `json:"product_id"`
	Quantity       int      `json:"quantity"`
	SelectedAddOns []string `json:"selected_addons"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fieldErrs := validate.FieldErrors{}
	if req.ProductID == "" {
		fieldErrs.Add("product_id", "The product id field is required.")
	}
	if req.Quantity < 1 {
		fieldErrs.Add("quantity", "The quantity must be at least 1.")
	}
	if fieldErrs.Any() {
		h.writeFieldErrors(w, fieldErrs)
		return
	}

	view, err := h.service.Add(r.Context(), user.ID, req.ProductID, req.Quantity, req.SelectedAddOns)
	if err != nil {
		h.writeServiceError(w, err, user.ID)
		return
	}

	h.logger.Info("cart item added", "user_id", user.ID, "product_id", req.ProductID, "quantity", req.Quantity)
	h.writeJSON(w, http.StatusOK, view)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Quantity < 1 {
		fieldErrs := validate.FieldErrors{}
		fieldErrs.Add("quantity", "The quantity must be at least 1.")
		h.writeFieldErrors(w, fieldErrs)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), user.ID, productID, req.Quantity)
	if err != nil {
		h.writeServiceError(w, err, user.ID)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	view, err := h.service.Remove(r.Context(), user.ID, productID)
	if err != nil {
		h.writeServiceError(w, err, user.ID)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	if err := h.service.Clear(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to clear cart", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, userID string) {
	switch {
	case errors.Is(err, ErrProductUnavailable):
		h.writeError(w, http.StatusNotFound, "Product not available")
	case errors.Is(err, ErrAddOnUnavailable):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCartNotFound):
		h.writeError(w, http.StatusNotFound, "Cart not found")
	default:
		h.logger.Error("cart operation failed", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
