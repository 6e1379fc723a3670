package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[string]*Product
}

// NewInMemoryRepository creates a new in-memory product repository
// preloaded with the seed catalog.
func NewInMemoryRepository() *InMemoryRepository {
	products := make(map[string]*Product, len(SeedProducts))
	for _, p := range SeedProducts {
		cpy := p
		products[p.ItemID] = &cpy
	}
	return &InMemoryRepository{products: products}
}

// List retrieves all products ordered by item ID.
func (r *InMemoryRepository) List(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ItemID < products[j].ItemID
	})

	return products, nil
}

// Get retrieves a product by item ID.
func (r *InMemoryRepository) Get(_ context.Context, itemID string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}

	// Return a copy
	cpy := *p
	return &cpy, nil
}

// Reserve decrements stock for a product.
func (r *InMemoryRepository) Reserve(_ context.Context, itemID string, quantity int) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}

	if p.Quantity < quantity {
		return nil, fmt.Errorf("%w: available %d", ErrInsufficientStock, p.Quantity)
	}

	p.Quantity -= quantity
	return &Reservation{
		ItemID:    itemID,
		Reserved:  quantity,
		Remaining: p.Quantity,
	}, nil
}

// AddStock increments stock for a product.
func (r *InMemoryRepository) AddStock(_ context.Context, itemID string, quantity int) (*Restock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}

	p.Quantity += quantity
	return &Restock{
		ItemID:   itemID,
		Added:    quantity,
		NewTotal: p.Quantity,
	}, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
