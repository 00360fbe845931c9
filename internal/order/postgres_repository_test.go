package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yashgautam99/jewellry/internal/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations(creds))

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func testOrder(key string) *domain.Order {
	return &domain.Order{
		ID:                uuid.New(),
		IdempotencyKey:    key,
		CustomerFirstName: "Asha",
		CustomerLastName:  "Rao",
		CustomerEmail:     "asha@example.com",
		CustomerPhone:     "9999999999",
		ShippingAddress:   "12 MG Road",
		ShippingCity:      "Bengaluru",
		ShippingPincode:   "560001",
		Subtotal:          5000,
		ShippingFee:       0,
		TotalAmount:       5000,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusPending,
		Notes:             "Payment method: COD",
	}
}

func TestInsertAndGetOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := testOrder("")
	require.NoError(t, repo.InsertHeader(ctx, order))

	lines := []domain.OrderLine{
		{ID: uuid.New(), OrderID: order.ID, VariantID: "v1", Quantity: 2, UnitPrice: 2500, LineTotal: 5000},
	}
	require.NoError(t, repo.InsertLines(ctx, order.ID, lines))

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.CustomerEmail, got.CustomerEmail)
	assert.Equal(t, int64(5000), got.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "v1", got.Lines[0].VariantID)
}

func TestGetOrder_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInsertHeader_DuplicateIdempotencyKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	first := testOrder("key-1")
	require.NoError(t, repo.InsertHeader(ctx, first))

	second := testOrder("key-1")
	err := repo.InsertHeader(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateIdempotencyKey)

	// empty keys are stored as NULL and never collide
	require.NoError(t, repo.InsertHeader(ctx, testOrder("")))
	require.NoError(t, repo.InsertHeader(ctx, testOrder("")))
}

func TestGetOrderByIdempotencyKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := testOrder("key-replay")
	require.NoError(t, repo.InsertHeader(ctx, order))

	got, err := repo.GetOrderByIdempotencyKey(ctx, "key-replay")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = repo.GetOrderByIdempotencyKey(ctx, "no-such-key")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatusAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := testOrder("")
	require.NoError(t, repo.InsertHeader(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing))

	orders, err := repo.ListOrdersByEmail(ctx, order.CustomerEmail)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusProcessing, orders[0].Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), domain.OrderStatusProcessing), ErrOrderNotFound)
}

func TestOpsEventsLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	order := testOrder("")
	require.NoError(t, repo.InsertHeader(ctx, order))

	event := &OpsEvent{
		ID:        uuid.New(),
		OrderID:   order.ID,
		EventType: EventLineItemGap,
		Payload:   []byte(`{"order_id":"` + order.ID.String() + `"}`),
	}
	require.NoError(t, repo.InsertOpsEvent(ctx, event))

	events, err := repo.GetUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventLineItemGap, events[0].EventType)

	require.NoError(t, repo.MarkEventProcessed(ctx, event.ID))

	events, err = repo.GetUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, events)
}
