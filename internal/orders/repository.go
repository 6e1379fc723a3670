package orders

import "context"

// Repository defines the interface for order storage.
type Repository interface {
	// Create stores an order with its line items.
	Create(ctx context.Context, order *Order) error

	// ListByUser retrieves a user's orders, newest first, with line
	// items populated.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
