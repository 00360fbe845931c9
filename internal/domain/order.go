package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the fulfilment flow allows moving from s to
// next. Orders advance pending → processing → shipped → delivered; any
// non-terminal order can be cancelled.
func CanTransitionTo(s, next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type OrderLine struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	LineTotal int64     `json:"line_total"`
}

// Order is the durable record of a checkout. Subtotal, ShippingFee and
// TotalAmount are always server-computed; TotalAmount = Subtotal + ShippingFee.
type Order struct {
	ID                uuid.UUID     `json:"id"`
	IdempotencyKey    string        `json:"idempotency_key,omitempty"`
	CustomerFirstName string        `json:"customer_first_name"`
	CustomerLastName  string        `json:"customer_last_name"`
	CustomerEmail     string        `json:"customer_email"`
	CustomerPhone     string        `json:"customer_phone"`
	ShippingAddress   string        `json:"shipping_address"`
	ShippingCity      string        `json:"shipping_city"`
	ShippingPincode   string        `json:"shipping_pincode"`
	Subtotal          int64         `json:"subtotal"`
	ShippingFee       int64         `json:"shipping_fee"`
	TotalAmount       int64         `json:"total_amount"`
	Status            OrderStatus   `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	Notes             string        `json:"notes,omitempty"`
	Lines             []OrderLine   `json:"lines,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
