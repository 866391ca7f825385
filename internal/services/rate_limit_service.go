package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
)

// RateLimitService handles per-client request rate limiting over a Redis
// fixed window
type RateLimitService struct {
	client *redis.Client
	cfg    *config.RateLimitConfig
	logger *logrus.Logger
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(client *redis.Client, cfg *config.RateLimitConfig, logger *logrus.Logger) *RateLimitService {
	return &RateLimitService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Allow records one request for the identifier and checks it against the
// window budget. The counter key expires with the window, so the whole
// state is self-cleaning. Redis being down fails open: availability of
// the booking surface beats precise throttling.
func (s *RateLimitService) Allow(ctx context.Context, identifier string) error {
	if s.client == nil {
		return nil
	}

	window := time.Duration(s.cfg.WindowSeconds) * time.Second
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, time.Now().Unix()/int64(s.cfg.WindowSeconds))

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Rate limit check failed, allowing request")
		return nil
	}

	if int(count.Val()) > s.cfg.Requests {
		ttl, err := s.client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return &RateLimitError{
			Message:    "Too many requests. Please try again later.",
			RetryAfter: ttl,
		}
	}
	return nil
}
