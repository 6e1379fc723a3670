package cart

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// This is intended for testing. Production should use RedisStore.
type InMemoryStore struct {
	mu    sync.Mutex
	carts map[string][]Item

	// FailWith, when set, is returned by every operation. Tests use it
	// to simulate a cache outage.
	FailWith error
}

// NewInMemoryStore creates a new in-memory cart store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{carts: make(map[string][]Item)}
}

// Get retrieves a user's cart.
func (s *InMemoryStore) Get(_ context.Context, userID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]Item(nil), s.carts[userID]...), nil
}

// Add puts an item in the cart, merging quantities for existing items.
func (s *InMemoryStore) Add(_ context.Context, userID string, item Item) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	items := s.carts[userID]
	merged := false
	for i := range items {
		if items[i].ItemID == item.ItemID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	s.carts[userID] = items

	return append([]Item(nil), items...), nil
}

// Remove deletes an item from the cart.
func (s *InMemoryStore) Remove(_ context.Context, userID, itemID string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	var kept []Item
	for _, it := range s.carts[userID] {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	s.carts[userID] = kept

	return append([]Item(nil), kept...), nil
}

// Clear deletes the entire cart.
func (s *InMemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.carts, userID)
	return nil
}

// Ensure InMemoryStore implements Store interface.
var _ Store = (*InMemoryStore)(nil)
