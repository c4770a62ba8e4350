package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/inkasso/backend/internal/domain/collection"
)

// CachedRateLookup decorates a rate lookup with a Redis cache. The base
// rate changes at most twice a year, so entries are keyed by half-year
// period. Cache failures fall back to the inner lookup silently; the cache
// is an optimization, never a source of truth.
type CachedRateLookup struct {
	inner  collection.RateLookup
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRateLookup creates a Redis-cached rate lookup
func NewCachedRateLookup(inner collection.RateLookup, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRateLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRateLookup{inner: inner, client: client, ttl: ttl, logger: logger}
}

// RateAt implements collection.RateLookup
func (c *CachedRateLookup) RateAt(at time.Time) decimal.Decimal {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	key := cacheKey(at)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		if rate, perr := decimal.NewFromString(cached); perr == nil {
			return rate
		}
	} else if err != redis.Nil {
		c.logger.Debug("rate cache read failed", zap.String("key", key), zap.Error(err))
	}

	rate := c.inner.RateAt(at)

	if err := c.client.Set(ctx, key, rate.String(), c.ttl).Err(); err != nil {
		c.logger.Debug("rate cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rate
}

var _ collection.RateLookup = (*CachedRateLookup)(nil)

// cacheKey buckets a date into its statutory half-year period
func cacheKey(at time.Time) string {
	half := "H1"
	if at.Month() >= time.July {
		half = "H2"
	}
	return fmt.Sprintf("inkasso:rates:base:%d-%s", at.Year(), half)
}
