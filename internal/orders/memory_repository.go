package orders

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

// NewInMemoryRepository creates a new in-memory order repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{orders: make(map[string]*Order)}
}

// Create stores an order.
func (r *InMemoryRepository) Create(_ context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *order
	cpy.Items = append([]Item(nil), order.Items...)
	r.orders[order.OrderID] = &cpy
	return nil
}

// ListByUser retrieves all orders for a user, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Order
	for _, o := range r.orders {
		if o.UserID == userID {
			cpy := *o
			cpy.Items = append([]Item(nil), o.Items...)
			result = append(result, cpy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
