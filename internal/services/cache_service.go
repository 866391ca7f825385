package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CacheService wraps Redis for response caching and invalidation.
// A nil client degrades every operation to a no-op miss.
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewCacheService creates the cache service
func NewCacheService(client *redis.Client, logger *logrus.Logger) *CacheService {
	return &CacheService{client: client, logger: logger}
}

// Get unmarshals the cached value at key into dest. Returns false on miss.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.client == nil {
		return false, nil
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores value at key with a TTL
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// DeletePattern removes every key matching pattern using SCAN so large
// keyspaces are not blocked the way KEYS would
func (s *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	if s.client == nil {
		return nil
	}

	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan failed: %w", err)
	}
	return nil
}

// InvalidateConsultant clears every cached namespace derived from a
// consultant's data after a booking or payment mutates it
func (s *CacheService) InvalidateConsultant(ctx context.Context, consultantID uuid.UUID) {
	namespaces := []string{"clients", "sessions", "dashboard", "slots", "availability", "consultant"}
	for _, ns := range namespaces {
		pattern := fmt.Sprintf("%s:%s*", ns, consultantID)
		if err := s.DeletePattern(ctx, pattern); err != nil {
			s.logger.WithError(err).WithField("pattern", pattern).Warn("Cache invalidation failed")
		}
	}
}
