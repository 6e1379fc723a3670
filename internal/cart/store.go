package cart

import "context"

// Store defines the interface for cart persistence.
type Store interface {
	// Get retrieves a user's cart. A missing cart is an empty slice,
	// not an error.
	Get(ctx context.Context, userID string) ([]Item, error)

	// Add puts an item in the cart, merging quantities when the item
	// is already present, and returns the updated cart.
	Add(ctx context.Context, userID string, item Item) ([]Item, error)

	// Remove deletes an item from the cart and returns the updated cart.
	Remove(ctx context.Context, userID, itemID string) ([]Item, error)

	// Clear deletes the entire cart.
	Clear(ctx context.Context, userID string) error
}
