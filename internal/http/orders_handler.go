package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yashgautam99/jewellry/internal/domain"
	"github.com/yashgautam99/jewellry/internal/order"
)

// OrderService covers the customer reads and the fulfilment status endpoint.
type OrderService interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) error
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.orders.GetOrder(ctx, id)
	if errors.Is(err, order.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load order")
		return
	}

	respondJSON(w, http.StatusOK, o)
}

// GET /api/v1/orders?email=...
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "missing_email", "email query parameter is required")
		return
	}

	orders, err := h.orders.ListOrdersByEmail(ctx, email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not list orders")
		return
	}

	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// PATCH /api/v1/admin/orders/{order_id}/status — the external fulfilment
// operation. Orders are only ever created as pending; every later move comes
// through here.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	next := domain.OrderStatus(req.Status)
	if !next.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	err = h.orders.UpdateStatus(ctx, id, next)
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, order.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update order")
	default:
		respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
	}
}
