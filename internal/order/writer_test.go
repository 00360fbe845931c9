package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashgautam99/jewellry/internal/domain"
)

type mockRepo struct {
	headerErr   error
	linesErr    error
	eventErr    error
	header      *domain.Order
	lines       []domain.OrderLine
	events      []*OpsEvent
	stored      *domain.Order
	byKey       *domain.Order
	byKeyErr    error
	statusSet   domain.OrderStatus
	statusErr   error
	unprocessed []*OpsEvent
}

func (m *mockRepo) InsertHeader(_ context.Context, order *domain.Order) error {
	if m.headerErr != nil {
		return m.headerErr
	}
	m.header = order
	return nil
}

func (m *mockRepo) InsertLines(_ context.Context, _ uuid.UUID, lines []domain.OrderLine) error {
	if m.linesErr != nil {
		return m.linesErr
	}
	m.lines = lines
	return nil
}

func (m *mockRepo) InsertOpsEvent(_ context.Context, event *OpsEvent) error {
	if m.eventErr != nil {
		return m.eventErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockRepo) GetOrder(context.Context, uuid.UUID) (*domain.Order, error) {
	if m.stored == nil {
		return nil, ErrOrderNotFound
	}
	return m.stored, nil
}

func (m *mockRepo) GetOrderByIdempotencyKey(context.Context, string) (*domain.Order, error) {
	if m.byKeyErr != nil {
		return nil, m.byKeyErr
	}
	if m.byKey == nil {
		return nil, ErrOrderNotFound
	}
	return m.byKey, nil
}

func (m *mockRepo) ListOrdersByEmail(context.Context, string) ([]*domain.Order, error) {
	return nil, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status domain.OrderStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.statusSet = status
	return nil
}

func (m *mockRepo) GetUnprocessedEvents(context.Context, int) ([]*OpsEvent, error) {
	return m.unprocessed, nil
}

func (m *mockRepo) MarkEventProcessed(context.Context, uuid.UUID) error {
	return nil
}

func someOrder() *domain.Order {
	return &domain.Order{
		CustomerFirstName: "Asha",
		CustomerEmail:     "asha@example.com",
		Subtotal:          1000,
		ShippingFee:       200,
		TotalAmount:       1200,
	}
}

func someLines() []domain.OrderLine {
	return []domain.OrderLine{
		{VariantID: "v1", Quantity: 1, UnitPrice: 1000, LineTotal: 1000},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo := &mockRepo{}
	writer := NewWriter(repo)

	result, err := writer.CreateOrder(context.Background(), someOrder(), someLines())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.OrderID)
	assert.True(t, result.LinesPersisted)
	assert.Equal(t, domain.OrderStatusPending, repo.header.Status)
	assert.Equal(t, domain.PaymentStatusPending, repo.header.PaymentStatus)
	require.Len(t, repo.lines, 1)
	assert.Equal(t, result.OrderID, repo.lines[0].OrderID)
	require.Len(t, repo.events, 1)
	assert.Equal(t, EventOrderPlaced, repo.events[0].EventType)
}

func TestCreateOrder_HeaderFailureIsFatal(t *testing.T) {
	repo := &mockRepo{headerErr: errors.New("connection refused")}
	writer := NewWriter(repo)

	_, err := writer.CreateOrder(context.Background(), someOrder(), someLines())

	require.Error(t, err)
	assert.Empty(t, repo.lines)
	assert.Empty(t, repo.events)
}

func TestCreateOrder_DuplicateKeyPassesThrough(t *testing.T) {
	repo := &mockRepo{headerErr: ErrDuplicateIdempotencyKey}
	writer := NewWriter(repo)

	_, err := writer.CreateOrder(context.Background(), someOrder(), someLines())

	assert.ErrorIs(t, err, ErrDuplicateIdempotencyKey)
}

func TestCreateOrder_LineFailureStillSucceeds(t *testing.T) {
	repo := &mockRepo{linesErr: errors.New("relation gone")}
	writer := NewWriter(repo)

	result, err := writer.CreateOrder(context.Background(), someOrder(), someLines())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.OrderID)
	assert.False(t, result.LinesPersisted)
	require.Len(t, repo.events, 1)
	assert.Equal(t, EventLineItemGap, repo.events[0].EventType)
	assert.Equal(t, result.OrderID, repo.events[0].OrderID)
}

func TestCreateOrder_EventFailureDoesNotFailCheckout(t *testing.T) {
	repo := &mockRepo{linesErr: errors.New("boom"), eventErr: errors.New("outbox down")}
	writer := NewWriter(repo)

	result, err := writer.CreateOrder(context.Background(), someOrder(), someLines())

	require.NoError(t, err)
	assert.False(t, result.LinesPersisted)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	repo := &mockRepo{stored: &domain.Order{ID: uuid.New(), Status: domain.OrderStatusPending}}
	writer := NewWriter(repo)

	err := writer.UpdateStatus(context.Background(), repo.stored.ID, domain.OrderStatusProcessing)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, repo.statusSet)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	repo := &mockRepo{stored: &domain.Order{ID: uuid.New(), Status: domain.OrderStatusDelivered}}
	writer := NewWriter(repo)

	err := writer.UpdateStatus(context.Background(), repo.stored.ID, domain.OrderStatusCancelled)

	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Empty(t, repo.statusSet)
}

func TestUpdateStatus_OrderNotFound(t *testing.T) {
	writer := NewWriter(&mockRepo{})

	err := writer.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusProcessing)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}
