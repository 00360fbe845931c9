package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yashgautam99/jewellry/internal/domain"
)

// CartService is what the cart endpoints need from the cart store.
type CartService interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, line domain.CartLine) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID, variantID string, quantity int, size, material string) (*domain.Cart, error)
	RemoveLine(ctx context.Context, cartID, variantID, size, material string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddLineRequestDTO struct {
	VariantID        string `json:"variant_id"`
	ProductSlug      string `json:"product_slug"`
	Name             string `json:"name"`
	UnitPrice        int64  `json:"unit_price"`
	ImageURL         string `json:"image_url"`
	Quantity         int    `json:"quantity"`
	SelectedSize     string `json:"selected_size"`
	SelectedMaterial string `json:"selected_material"`
}

type UpdateQuantityRequestDTO struct {
	Quantity         int    `json:"quantity"`
	SelectedSize     string `json:"selected_size"`
	SelectedMaterial string `json:"selected_material"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := getCartIDFromContext(r.Context())
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_id", "no cart id on request")
		return
	}

	cart, err := h.carts.Get(ctx, cartID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not load cart")
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := getCartIDFromContext(r.Context())
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_id", "no cart id on request")
		return
	}

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.AddLine(ctx, cartID, domain.CartLine{
		VariantID:        req.VariantID,
		ProductSlug:      req.ProductSlug,
		Name:             req.Name,
		UnitPrice:        req.UnitPrice,
		ImageURL:         req.ImageURL,
		Quantity:         req.Quantity,
		SelectedSize:     req.SelectedSize,
		SelectedMaterial: req.SelectedMaterial,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not add to cart")
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := getCartIDFromContext(r.Context())
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_id", "no cart id on request")
		return
	}

	variantID := chi.URLParam(r, "variant_id")
	if variantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// zero is allowed and removes the line
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, cartID, variantID, req.Quantity, req.SelectedSize, req.SelectedMaterial)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := getCartIDFromContext(r.Context())
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_id", "no cart id on request")
		return
	}

	variantID := chi.URLParam(r, "variant_id")
	if variantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}

	size := r.URL.Query().Get("size")
	material := r.URL.Query().Get("material")

	cart, err := h.carts.RemoveLine(ctx, cartID, variantID, size, material)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not update cart")
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := getCartIDFromContext(r.Context())
	if cartID == "" {
		respondError(w, http.StatusBadRequest, "missing_cart_id", "no cart id on request")
		return
	}

	if err := h.carts.Clear(ctx, cartID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not clear cart")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
