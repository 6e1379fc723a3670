package inventory

import "context"

// Repository defines the interface for product storage.
type Repository interface {
	// List retrieves all products.
	List(ctx context.Context) ([]Product, error)

	// Get retrieves a product by item ID.
	// Returns ErrItemNotFound if the product does not exist.
	Get(ctx context.Context, itemID string) (*Product, error)

	// Reserve atomically decrements stock for a product.
	// Returns ErrItemNotFound if the product does not exist and
	// ErrInsufficientStock if fewer than quantity units remain.
	Reserve(ctx context.Context, itemID string, quantity int) (*Reservation, error)

	// AddStock atomically increments stock for a product.
	// Returns ErrItemNotFound if the product does not exist.
	AddStock(ctx context.Context, itemID string, quantity int) (*Restock, error)
}
