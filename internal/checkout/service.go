package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/yashgautam99/jewellry/internal/domain"
	"github.com/yashgautam99/jewellry/internal/order"
)

// ShippingForm carries the customer-entered contact and address fields.
type ShippingForm struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
	State         string `json:"state"`
	PaymentMethod string `json:"payment_method"`
}

// CartLineInput is a cart line as submitted by the client. UnitPrice is
// advisory display data and is never read when computing totals.
type CartLineInput struct {
	VariantID        string `json:"variant_id"`
	Quantity         int    `json:"quantity"`
	SelectedSize     string `json:"selected_size,omitempty"`
	SelectedMaterial string `json:"selected_material,omitempty"`
	UnitPrice        int64  `json:"unit_price,omitempty"`
}

type Request struct {
	ShippingForm   ShippingForm    `json:"shipping_form"`
	CartLines      []CartLineInput `json:"cart_lines"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// Result is the discriminated checkout outcome. Exactly one of OrderID or
// Error is meaningful, selected by Success.
type Result struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"-"`
}

// Pricer produces an authoritative quote for the requested lines.
type Pricer interface {
	Quote(ctx context.Context, requests []domain.LineRequest) (*domain.Quote, error)
}

// OrderWriter durably records the order built from a quote.
type OrderWriter interface {
	CreateOrder(ctx context.Context, o *domain.Order, lines []domain.OrderLine) (*order.WriteResult, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
}

// Service orchestrates a checkout submission: validate, price against the
// live catalogue, write the order. Client-sent prices are advisory only.
type Service struct {
	pricer Pricer
	writer OrderWriter
}

func NewService(pricer Pricer, writer OrderWriter) *Service {
	return &Service{pricer: pricer, writer: writer}
}

var paymentMethods = map[string]struct{}{
	"cod": {},
	"upi": {},
}

// PlaceOrder runs one checkout submission. It never panics or returns a raw
// error to the transport layer: every outcome is a Result.
func (s *Service) PlaceOrder(ctx context.Context, req *Request) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("checkout panic recovered: %v", r)
			result = failure(CodeInternal, "An unexpected error occurred.")
		}
	}()

	if err := validate(req); err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			return failure(CodeEmptyCart, "Cart is empty")
		default:
			return failure(CodeInvalidShipping, err.Error())
		}
	}

	// A replayed idempotency key returns the prior order instead of writing
	// a second header.
	if req.IdempotencyKey != "" {
		prior, err := s.writer.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			log.Printf("duplicate checkout detected, idempotency_key=%s order_id=%s", req.IdempotencyKey, prior.ID)
			return &Result{Success: true, OrderID: prior.ID.String()}
		}
		if !errors.Is(err, order.ErrOrderNotFound) {
			log.Printf("idempotency lookup failed: %v", err)
			return failure(CodeInternal, "Failed to place order. Please try again.")
		}
	}

	requests := make([]domain.LineRequest, 0, len(req.CartLines))
	for _, line := range req.CartLines {
		requests = append(requests, domain.LineRequest{VariantID: line.VariantID, Quantity: line.Quantity})
	}

	quote, err := s.pricer.Quote(ctx, requests)
	if err != nil {
		log.Printf("pricing failed: %v", err)
		return failure(CodeInternal, "Failed to place order. Please try again.")
	}

	for _, gone := range quote.Unlinked {
		log.Printf("checkout: variant %s no longer resolves, line skipped", gone.VariantID)
	}
	if len(quote.Lines) == 0 {
		return failure(CodeNothingPriced, "None of the items in your cart are available anymore.")
	}

	o, lines := buildOrder(req, quote)
	written, err := s.writer.CreateOrder(ctx, o, lines)
	if err != nil {
		log.Printf("order write failed: %v", err)
		return failure(CodeWriteFailed, "Failed to place order. Please try again.")
	}

	return &Result{Success: true, OrderID: written.OrderID.String()}
}

func validate(req *Request) error {
	if len(req.CartLines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range req.CartLines {
		if line.VariantID == "" || line.Quantity <= 0 {
			return fmt.Errorf("%w: cart line needs a variant id and a positive quantity", ErrInvalidShipping)
		}
	}

	f := req.ShippingForm
	required := map[string]string{
		"full_name": f.FullName,
		"email":     f.Email,
		"phone":     f.Phone,
		"address":   f.Address,
		"city":      f.City,
		"pincode":   f.Pincode,
		"state":     f.State,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidShipping, field)
		}
	}
	if !strings.Contains(f.Email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrInvalidShipping)
	}
	if _, ok := paymentMethods[f.PaymentMethod]; !ok {
		return fmt.Errorf("%w: unsupported payment method %q", ErrInvalidShipping, f.PaymentMethod)
	}
	return nil
}

func buildOrder(req *Request, quote *domain.Quote) (*domain.Order, []domain.OrderLine) {
	first, last := splitName(req.ShippingForm.FullName)

	o := &domain.Order{
		ID:                uuid.New(),
		IdempotencyKey:    req.IdempotencyKey,
		CustomerFirstName: first,
		CustomerLastName:  last,
		CustomerEmail:     strings.TrimSpace(req.ShippingForm.Email),
		CustomerPhone:     strings.TrimSpace(req.ShippingForm.Phone),
		ShippingAddress:   strings.TrimSpace(req.ShippingForm.Address),
		ShippingCity:      strings.TrimSpace(req.ShippingForm.City),
		ShippingPincode:   strings.TrimSpace(req.ShippingForm.Pincode),
		Subtotal:          quote.Subtotal,
		ShippingFee:       quote.ShippingFee,
		TotalAmount:       quote.Total,
		Notes: fmt.Sprintf("Payment method: %s. State: %s",
			strings.ToUpper(req.ShippingForm.PaymentMethod), req.ShippingForm.State),
	}

	lines := make([]domain.OrderLine, 0, len(quote.Lines))
	for _, priced := range quote.Lines {
		lines = append(lines, domain.OrderLine{
			ID:        uuid.New(),
			OrderID:   o.ID,
			VariantID: priced.VariantID,
			Quantity:  priced.Quantity,
			UnitPrice: priced.UnitPrice,
			LineTotal: priced.LineTotal,
		})
	}

	return o, lines
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", "-"
	}
	first = parts[0]
	last = strings.Join(parts[1:], " ")
	if last == "" {
		last = "-"
	}
	return first, last
}

func failure(code, message string) *Result {
	return &Result{Success: false, Error: message, Code: code}
}
