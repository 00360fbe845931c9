package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/yashgautam99/jewellry/internal/domain"
)

// Writer durably records orders. The header write is all-or-nothing: if it
// fails, the checkout fails. The line write is best-effort: a failure there
// keeps the pending header and raises a line_item_gap ops event instead of
// failing the customer, because the header is the customer-visible contract
// while line completeness is a fulfilment-accuracy concern recoverable
// out-of-band.
type Writer struct {
	repo OrderRepository
}

func NewWriter(repo OrderRepository) *Writer {
	return &Writer{repo: repo}
}

type WriteResult struct {
	OrderID        uuid.UUID
	LinesPersisted bool
}

func (w *Writer) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.OrderLine) (*WriteResult, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.Status = domain.OrderStatusPending
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}

	// Step A: the header. Fatal on failure, nothing partial may remain.
	if err := w.repo.InsertHeader(ctx, order); err != nil {
		return nil, err
	}

	// Step B: the lines. The header is not rolled back on failure.
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		lines[i].OrderID = order.ID
	}

	if err := w.repo.InsertLines(ctx, order.ID, lines); err != nil {
		log.Printf("order %s: line insert failed, header retained: %v", order.ID, err)
		w.recordEvent(ctx, order.ID, EventLineItemGap, map[string]interface{}{
			"order_id":   order.ID.String(),
			"line_count": len(lines),
			"error":      err.Error(),
		})
		return &WriteResult{OrderID: order.ID, LinesPersisted: false}, nil
	}

	w.recordEvent(ctx, order.ID, EventOrderPlaced, map[string]interface{}{
		"order_id":     order.ID.String(),
		"total_amount": order.TotalAmount,
		"line_count":   len(lines),
	})

	return &WriteResult{OrderID: order.ID, LinesPersisted: true}, nil
}

func (w *Writer) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return w.repo.GetOrderByIdempotencyKey(ctx, key)
}

func (w *Writer) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return w.repo.GetOrder(ctx, id)
}

func (w *Writer) ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	return w.repo.ListOrdersByEmail(ctx, email)
}

// UpdateStatus applies a fulfilment transition, rejecting moves the status
// machine does not allow.
func (w *Writer) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) error {
	order, err := w.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanTransitionTo(order.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, next)
	}

	return w.repo.UpdateStatus(ctx, id, next)
}

// recordEvent writes an ops-outbox row best-effort; publishing failures must
// never bubble into the checkout result.
func (w *Writer) recordEvent(ctx context.Context, orderID uuid.UUID, eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("order %s: marshal %s event: %v", orderID, eventType, err)
		return
	}

	event := &OpsEvent{
		ID:        uuid.New(),
		OrderID:   orderID,
		EventType: eventType,
		Payload:   data,
	}
	if err := w.repo.InsertOpsEvent(ctx, event); err != nil {
		log.Printf("order %s: record %s event: %v", orderID, eventType, err)
	}
}
