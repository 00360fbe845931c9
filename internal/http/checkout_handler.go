package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/yashgautam99/jewellry/internal/checkout"
)

// CheckoutService runs one checkout submission end to end.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, req *checkout.Request) *checkout.Result
}

type CheckoutHandler struct {
	checkouts CheckoutService
	carts     CartService
	timeout   time.Duration
}

func NewCheckoutHandler(checkouts CheckoutService, carts CartService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		carts:     carts,
		timeout:   timeout,
	}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result := h.checkouts.PlaceOrder(ctx, &req)
	if !result.Success {
		respondError(w, statusForCode(result.Code), result.Code, result.Error)
		return
	}

	// The server-held cart mirrors the client one; drop it now that the
	// order exists. Best-effort: the order already stands.
	if cartID := getCartIDFromContext(r.Context()); cartID != "" {
		if err := h.carts.Clear(ctx, cartID); err != nil {
			log.Printf("post-checkout cart clear failed for %s: %v", cartID, err)
		}
	}

	respondJSON(w, http.StatusCreated, result)
}

func statusForCode(code string) int {
	switch code {
	case checkout.CodeEmptyCart, checkout.CodeInvalidShipping, checkout.CodeNothingPriced:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
