package checkout

import (
	"context"

	"github.com/yashgautam99/jewellry/internal/domain"
	"github.com/yashgautam99/jewellry/internal/order"
)

// MockPricer implements Pricer for testing
type MockPricer struct {
	Quoted      *domain.Quote
	Err         error
	GotRequests []domain.LineRequest
	Panics      bool
}

func (m *MockPricer) Quote(_ context.Context, requests []domain.LineRequest) (*domain.Quote, error) {
	if m.Panics {
		panic("pricer exploded")
	}
	m.GotRequests = requests
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quoted, nil
}

// MockWriter implements OrderWriter for testing
type MockWriter struct {
	Result       *order.WriteResult
	CreateErr    error
	CreatedOrder *domain.Order
	CreatedLines []domain.OrderLine
	Prior        *domain.Order
	PriorErr     error
}

func (m *MockWriter) CreateOrder(_ context.Context, o *domain.Order, lines []domain.OrderLine) (*order.WriteResult, error) {
	m.CreatedOrder = o
	m.CreatedLines = lines
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Result != nil {
		return m.Result, nil
	}
	return &order.WriteResult{OrderID: o.ID, LinesPersisted: true}, nil
}

func (m *MockWriter) FindByIdempotencyKey(context.Context, string) (*domain.Order, error) {
	if m.PriorErr != nil {
		return nil, m.PriorErr
	}
	if m.Prior == nil {
		return nil, order.ErrOrderNotFound
	}
	return m.Prior, nil
}
