package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faultmesh/faultmesh/internal/fault"
)

// TTL is how long an idle cart survives in Redis.
const TTL = time.Hour

// RedisStore is a Redis implementation of Store. Cart contents are
// stored as a JSON array under cart:{user_id} with a sliding TTL.
// Injected cache latency is applied before every operation so slow
// Redis looks exactly like slow Redis.
type RedisStore struct {
	client *redis.Client
	faults *fault.Registry
}

// NewRedisStore creates a new Redis cart store.
func NewRedisStore(client *redis.Client, faults *fault.Registry) *RedisStore {
	return &RedisStore{client: client, faults: faults}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

// injectLatency sleeps for the currently injected cache delay, if any.
func (s *RedisStore) injectLatency(ctx context.Context) error {
	delay := s.faults.CacheDelay()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get retrieves a user's cart.
func (s *RedisStore) Get(ctx context.Context, userID string) ([]Item, error) {
	if err := s.injectLatency(ctx); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

// Add puts an item in the cart, merging quantities for existing items.
func (s *RedisStore) Add(ctx context.Context, userID string, item Item) ([]Item, error) {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

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

	if err := s.save(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove deletes an item from the cart.
func (s *RedisStore) Remove(ctx context.Context, userID, itemID string) ([]Item, error) {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, it := range items {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}

	if err := s.save(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear deletes the entire cart.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.injectLatency(ctx); err != nil {
		return err
	}

	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *RedisStore) save(ctx context.Context, userID string, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(userID), data, TTL).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Ensure RedisStore implements Store interface.
var _ Store = (*RedisStore)(nil)
