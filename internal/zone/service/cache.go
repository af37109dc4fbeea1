package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	"go.uber.org/zap"
)

// zoneCache is a read-through cache of zones keyed by code. Every failure
// is logged and treated as a miss so the database stays authoritative.
type zoneCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func cacheKey(code string) string {
	return "parkwise:zone:" + code
}

func (c *zoneCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *zoneCache) get(ctx context.Context, code string) (*zonedomain.Zone, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.client.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("zone cache read failed", zap.String("code", code), zap.Error(err))
		}
		return nil, false
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		c.log.Warn("zone cache entry corrupt", zap.String("code", code), zap.Error(err))
		return nil, false
	}

	var z zonedomain.Zone
	if err := json.Unmarshal(decoded, &z); err != nil {
		c.log.Warn("zone cache entry undecodable", zap.String("code", code), zap.Error(err))
		return nil, false
	}
	return &z, true
}

func (c *zoneCache) set(ctx context.Context, z *zonedomain.Zone) {
	if !c.enabled() || z == nil {
		return
	}

	payload, err := json.Marshal(z)
	if err != nil {
		c.log.Warn("zone cache encode failed", zap.String("code", z.Code), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(z.Code), snappy.Encode(nil, payload), c.ttl).Err(); err != nil {
		c.log.Warn("zone cache write failed", zap.String("code", z.Code), zap.Error(err))
	}
}

func (c *zoneCache) invalidate(ctx context.Context, code string) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, cacheKey(code)).Err(); err != nil {
		c.log.Warn("zone cache invalidation failed", zap.String("code", code), zap.Error(err))
	}
}
