// Package idempotency remembers which record an Idempotency-Key produced so that a
// retried submission returns the original record instead of creating a new one.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yigit/campusfound/internal/pkg/apperrors"
	"github.com/yigit/campusfound/internal/pkg/metrics"
)

const pendingValue = "pending"

// Result is what an earlier request with the same key produced
type Result struct {
	Kind string
	ID   uuid.UUID
}

// Store reserves keys and records their results
type Store interface {
	// Reserve claims key for owner. When the key was already completed, the earlier
	// result is returned with reserved=false.
	Reserve(ctx context.Context, owner uuid.UUID, key string) (prev *Result, reserved bool, err error)
	// Complete records the result of a reserved key
	Complete(ctx context.Context, owner uuid.UUID, key string, result Result) error
	// Release drops a reservation whose request failed
	Release(ctx context.Context, owner uuid.UUID, key string)
}

// RedisStore keeps keys in Redis with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(owner uuid.UUID, key string) string {
	return "campusfound:idempotency:" + owner.String() + ":" + key
}

// Reserve claims the key with SETNX
func (s *RedisStore) Reserve(ctx context.Context, owner uuid.UUID, key string) (*Result, bool, error) {
	rk := redisKey(owner, key)
	ok, err := s.client.SetNX(ctx, rk, pendingValue, s.ttl).Result()
	if err != nil {
		metrics.RedisErrors.WithLabelValues("setnx").Inc()
		return nil, false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	val, err := s.client.Get(ctx, rk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls, try once more
		return s.Reserve(ctx, owner, key)
	}
	if err != nil {
		metrics.RedisErrors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == pendingValue {
		return nil, false, apperrors.NewConflictError("A request with this Idempotency-Key is still in progress")
	}

	kind, rawID, found := strings.Cut(val, ":")
	id, parseErr := uuid.Parse(rawID)
	if !found || parseErr != nil {
		return nil, false, fmt.Errorf("corrupt idempotency value %q", val)
	}
	return &Result{Kind: kind, ID: id}, false, nil
}

// Complete stores the result, keeping the reservation TTL
func (s *RedisStore) Complete(ctx context.Context, owner uuid.UUID, key string, result Result) error {
	err := s.client.Set(ctx, redisKey(owner, key), result.Kind+":"+result.ID.String(), s.ttl).Err()
	if err != nil {
		metrics.RedisErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release deletes the reservation
func (s *RedisStore) Release(ctx context.Context, owner uuid.UUID, key string) {
	if err := s.client.Del(ctx, redisKey(owner, key)).Err(); err != nil {
		metrics.RedisErrors.WithLabelValues("del").Inc()
	}
}

// NoopStore is used when Redis is not configured; every key is always reservable
type NoopStore struct{}

func (NoopStore) Reserve(context.Context, uuid.UUID, string) (*Result, bool, error) {
	return nil, true, nil
}

func (NoopStore) Complete(context.Context, uuid.UUID, string, Result) error { return nil }

func (NoopStore) Release(context.Context, uuid.UUID, string) {}
