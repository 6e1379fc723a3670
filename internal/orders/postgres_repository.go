package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Init creates the orders and order_items tables if needed.
func (r *PostgresRepository) Init(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS orders (
			order_id     TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			total_amount DOUBLE PRECISION NOT NULL,
			payment_id   TEXT,
			status       TEXT NOT NULL DEFAULT 'pending',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id);
		CREATE TABLE IF NOT EXISTS order_items (
			id         SERIAL PRIMARY KEY,
			order_id   TEXT NOT NULL REFERENCES orders (order_id),
			item_id    TEXT NOT NULL,
			item_name  TEXT NOT NULL,
			quantity   INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);
	`

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create order tables: %w", err)
	}
	return nil
}

// Create stores an order and its line items in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, order *Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (order_id, user_id, total_amount, payment_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.OrderID,
		order.UserID,
		order.TotalAmount,
		order.PaymentID,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, item_id, item_name, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5)`,
			order.OrderID,
			item.ItemID,
			item.Name,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListByUser retrieves all orders for a user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	query := `
		SELECT order_id, user_id, total_amount, COALESCE(payment_id, ''), status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		var o Order
		err := rows.Scan(&o.OrderID, &o.UserID, &o.TotalAmount, &o.PaymentID, &o.Status, &o.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.listItems(ctx, result[i].OrderID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}

	return result, nil
}

func (r *PostgresRepository) listItems(ctx context.Context, orderID string) ([]Item, error) {
	query := `
		SELECT item_id, item_name, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
