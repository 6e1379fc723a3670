package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL product repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Init creates the products table if needed and loads the seed catalog
// into an empty table. Existing rows are left untouched.
func (r *PostgresRepository) Init(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS products (
			item_id    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			price      DOUBLE PRECISION NOT NULL,
			quantity   INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	seed := `
		INSERT INTO products (item_id, name, price, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO NOTHING
	`

	for _, p := range SeedProducts {
		if _, err := r.pool.Exec(ctx, seed, p.ItemID, p.Name, p.Price, p.Quantity); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ItemID, err)
		}
	}

	return nil
}

// List retrieves all products ordered by item ID.
func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	query := `
		SELECT item_id, name, price, quantity, created_at, updated_at
		FROM products
		ORDER BY item_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ItemID, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// Get retrieves a product by item ID.
func (r *PostgresRepository) Get(ctx context.Context, itemID string) (*Product, error) {
	query := `
		SELECT item_id, name, price, quantity, created_at, updated_at
		FROM products
		WHERE item_id = $1
	`

	var p Product
	err := r.pool.QueryRow(ctx, query, itemID).Scan(
		&p.ItemID,
		&p.Name,
		&p.Price,
		&p.Quantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return &p, nil
}

// Reserve decrements stock inside a transaction with a row lock so
// concurrent reservations for the same item cannot oversell.
func (r *PostgresRepository) Reserve(ctx context.Context, itemID string, quantity int) (*Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx,
		`SELECT quantity FROM products WHERE item_id = $1 FOR UPDATE`,
		itemID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if available < quantity {
		return nil, fmt.Errorf("%w: available %d", ErrInsufficientStock, available)
	}

	remaining := available - quantity
	_, err = tx.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = $3 WHERE item_id = $1`,
		itemID, remaining, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &Reservation{
		ItemID:    itemID,
		Reserved:  quantity,
		Remaining: remaining,
	}, nil
}

// AddStock increments stock for a product.
func (r *PostgresRepository) AddStock(ctx context.Context, itemID string, quantity int) (*Restock, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $2, updated_at = $3
		WHERE item_id = $1
		RETURNING quantity
	`

	var newTotal int
	err := r.pool.QueryRow(ctx, query, itemID, quantity, time.Now().UTC()).Scan(&newTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return &Restock{
		ItemID:   itemID,
		Added:    quantity,
		NewTotal: newTotal,
	}, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
