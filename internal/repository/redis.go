package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carserve/internal/config"
	"carserve/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrHoldTaken is returned when another customer already holds the slot.
var ErrHoldTaken = errors.New("slot is held by another customer")

// RedisHoldRepository keeps short-lived checkout holds and rate-limit
// counters in Redis. Holds are advisory: the database capacity decrement
// stays authoritative.
type RedisHoldRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisHoldRepository(client *redis.Client, ttl time.Duration) *RedisHoldRepository {
	return &RedisHoldRepository{client: client, ttl: ttl}
}

func holdKey(slotID int64) string {
	return fmt.Sprintf("slot_hold:%d", slotID)
}

// PlaceHold claims the slot for the customer if nobody else holds it. The
// hold expires on its own after the TTL.
func (r *RedisHoldRepository) PlaceHold(ctx context.Context, hold *models.SlotHold) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(hold)
	if err != nil {
		return fmt.Errorf("failed to marshal hold: %w", err)
	}

	ok, err := r.client.SetNX(ctx, holdKey(hold.SlotID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to place hold in redis: %w", err)
	}
	if !ok {
		existing, err := r.GetHold(ctx, hold.SlotID)
		if err == nil && existing != nil && existing.CustomerID == hold.CustomerID {
			// Re-holding your own slot refreshes the TTL.
			return r.client.Set(ctx, holdKey(hold.SlotID), data, r.ttl).Err()
		}
		return ErrHoldTaken
	}
	return nil
}

func (r *RedisHoldRepository) GetHold(ctx context.Context, slotID int64) (*models.SlotHold, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, holdKey(slotID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hold from redis: %w", err)
	}

	var hold models.SlotHold
	if err := json.Unmarshal([]byte(val), &hold); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hold: %w", err)
	}
	return &hold, nil
}

// ReleaseHold drops the hold if it belongs to the customer.
func (r *RedisHoldRepository) ReleaseHold(ctx context.Context, slotID, customerID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	hold, err := r.GetHold(ctx, slotID)
	if err != nil {
		return err
	}
	if hold == nil || hold.CustomerID != customerID {
		return nil
	}
	if err := r.client.Del(ctx, holdKey(slotID)).Err(); err != nil {
		return fmt.Errorf("failed to release hold in redis: %w", err)
	}
	return nil
}

func (r *RedisHoldRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%d", userID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
