package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yashgautam99/jewellry/internal/domain"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrIllegalTransition       = errors.New("illegal order status transition")
)

// Ops event types published for operator follow-up.
const (
	EventOrderPlaced = "order_placed"
	EventLineItemGap = "line_item_gap"
)

// OpsEvent is an outbox row destined for the operator topic. Line-item gaps
// travel this way so they never surface in the customer response.
type OpsEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	Payload   []byte
	Processed bool
	CreatedAt time.Time
}

// OrderRepository persists order headers and lines as separate operations so
// the writer can keep a header even when its lines fail.
type OrderRepository interface {
	InsertHeader(ctx context.Context, order *domain.Order) error
	InsertLines(ctx context.Context, orderID uuid.UUID, lines []domain.OrderLine) error
	InsertOpsEvent(ctx context.Context, event *OpsEvent) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OpsEvent, error)
	MarkEventProcessed(ctx context.Context, id uuid.UUID) error
}
