package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	"github.com/yashgautam99/jewellry/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

// DB exposes the underlying pool so the catalogue reader can share it.
func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) InsertHeader(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (
			id, idempotency_key,
			customer_first_name, customer_last_name, customer_email, customer_phone,
			shipping_address, shipping_city, shipping_pincode,
			subtotal, shipping_fee, total_amount,
			status, payment_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())`

	var key sql.NullString
	if order.IdempotencyKey != "" {
		key = sql.NullString{String: order.IdempotencyKey, Valid: true}
	}

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		key,
		order.CustomerFirstName,
		order.CustomerLastName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ShippingAddress,
		order.ShippingCity,
		order.ShippingPincode,
		order.Subtotal,
		order.ShippingFee,
		order.TotalAmount,
		order.Status,
		order.PaymentStatus,
		order.Notes)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("insert order header: %w", insertErr)
	}
	return nil
}

func (r *Repository) InsertLines(ctx context.Context, orderID uuid.UUID, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin line insert: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO order_items (id, order_id, variant_id, quantity, unit_price, line_total)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query,
			line.ID, orderID, line.VariantID, line.Quantity, line.UnitPrice, line.LineTotal); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order lines: %w", err)
	}
	return nil
}

func (r *Repository) InsertOpsEvent(ctx context.Context, event *OpsEvent) error {
	query := `INSERT INTO ops_events (id, order_id, event_type, payload, processed, created_at)
	          VALUES ($1, $2, $3, $4, false, NOW())`

	if _, err := r.db.ExecContext(ctx, query,
		event.ID, event.OrderID, event.EventType, event.Payload); err != nil {
		return fmt.Errorf("insert ops event: %w", err)
	}
	return nil
}

const orderColumns = `id, COALESCE(idempotency_key, ''),
		customer_first_name, customer_last_name, customer_email, customer_phone,
		shipping_address, shipping_city, shipping_pincode,
		subtotal, shipping_fee, total_amount,
		status, payment_status, notes, created_at, updated_at`

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	lines, err := r.getLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return order, nil
}

func (r *Repository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`

	return r.scanOrder(r.db.QueryRowContext(ctx, query, key))
}

func (r *Repository) ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_email = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query orders by email: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OpsEvent, error) {
	query := `SELECT id, order_id, event_type, payload, processed, created_at
	          FROM ops_events WHERE processed = false ORDER BY created_at LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query ops events: %w", err)
	}
	defer rows.Close()

	var events []*OpsEvent
	for rows.Next() {
		var ev OpsEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.EventType, &ev.Payload, &ev.Processed, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ops event: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *Repository) MarkEventProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE ops_events SET processed = true WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark ops event processed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.IdempotencyKey,
		&order.CustomerFirstName,
		&order.CustomerLastName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.ShippingAddress,
		&order.ShippingCity,
		&order.ShippingPincode,
		&order.Subtotal,
		&order.ShippingFee,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentStatus,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &order, nil
}

func (r *Repository) getLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	query := `SELECT id, order_id, variant_id, quantity, unit_price, line_total
	          FROM order_items WHERE order_id = $1`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.VariantID, &line.Quantity, &line.UnitPrice, &line.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lines, nil
}
