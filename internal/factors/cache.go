package factors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freightwatch-systems/risk-engine/internal/models"
)

// CachedProvider decorates another Provider with a Redis read-through cache.
// Caching lives here, on the provider side of the seam: the pipeline always
// fetches fresh factors per assessment and never caches them itself.
//
// Cache failures are soft. A Redis error degrades to a direct lookup on the
// wrapped provider; only a provider failure surfaces to the caller.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
}

// NewCachedProvider wraps next with a cache using the given TTL.
func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// Lookup serves from cache when possible, otherwise falls through to the
// wrapped provider and populates the cache on success. ErrNotFound is not
// cached: a shipment may gain factors at any moment.
func (c *CachedProvider) Lookup(ctx context.Context, shipmentID string) (models.RiskFactors, error) {
	key := cacheKey(shipmentID)

	data, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var f models.RiskFactors
		if jsonErr := json.Unmarshal([]byte(data), &f); jsonErr == nil {
			return f, nil
		}
		// Unparseable entry: drop it and fall through.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) && errors.Is(ctx.Err(), context.Canceled) {
		return models.RiskFactors{}, ctx.Err()
	}

	f, err := c.next.Lookup(ctx, shipmentID)
	if err != nil {
		return models.RiskFactors{}, err
	}

	if data, marshalErr := json.Marshal(f); marshalErr == nil {
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}

	return f, nil
}

func cacheKey(shipmentID string) string {
	return fmt.Sprintf("riskfactors:%s", shipmentID)
}
