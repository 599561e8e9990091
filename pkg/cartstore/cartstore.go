package cartstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one hash per user (cart:<user_id>) mapping item id
// to quantity. The whole hash carries a sliding TTL which is reset on
// every mutation, never on reads. Contents are best-effort: an expired
// or lost cart is simply treated as empty by callers.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// AddItem increments the quantity stored for itemID and returns the
// new cumulative quantity. The cart is created if absent.
func (s *RedisStore) AddItem(ctx context.Context, userID, itemID string, qty int64) (int64, error) {
	key := cartKey(userID)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, itemID, qty)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add cart item: %w", err)
	}
	return incr.Val(), nil
}

// RemoveItem deletes the item entry and reports whether it existed.
// Removing from an absent cart is not an error.
func (s *RedisStore) RemoveItem(ctx context.Context, userID, itemID string) (bool, error) {
	key := cartKey(userID)

	removed, err := s.client.HDel(ctx, key, itemID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if removed == 0 {
		return false, nil
	}

	// Mutation refreshes the sliding window. Expire on a now-empty
	// cart is a no-op because HDel of the last field drops the key.
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to refresh cart ttl: %w", err)
	}
	return true, nil
}

// ViewCart returns the current item -> quantity mapping without
// touching the TTL. An absent cart yields an empty map.
func (s *RedisStore) ViewCart(ctx context.Context, userID string) (map[string]int64, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	cart := make(map[string]int64, len(fields))
	for itemID, raw := range fields {
		qty, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity for item %s: %w", itemID, err)
		}
		cart[itemID] = qty
	}
	return cart, nil
}

// ClearCart drops the whole cart record. Called only after the durable
// order write has committed.
func (s *RedisStore) ClearCart(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
