package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - profile:{user_id} - 5m TTL, resolved display profile

// CacheConfig contains configuration for caching
type CacheConfig struct {
	ProfileTTL time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ProfileTTL: 5 * time.Minute,
	}
}

// ProfileCache caches resolved user display profiles. A cache failure is
// never surfaced to callers; they fall back to the database.
type ProfileCache struct {
	client *goredis.Client
	config CacheConfig
}

func NewProfileCache(client *goredis.Client, config CacheConfig) *ProfileCache {
	return &ProfileCache{client: client, config: config}
}

// CachedProfile is the stored shape of a resolved user.
type CachedProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

func profileKey(id uuid.UUID) string {
	return "profile:" + id.String()
}

// GetMany returns the cached profiles found among ids. Misses and redis
// errors are simply absent from the result.
func (c *ProfileCache) GetMany(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]CachedProfile {
	found := make(map[uuid.UUID]CachedProfile, len(ids))
	if len(ids) == 0 {
		return found
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return found
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var profile CachedProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			continue
		}
		found[ids[i]] = profile
	}
	return found
}

// Set stores a profile, best effort.
func (c *ProfileCache) Set(ctx context.Context, profile CachedProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, profileKey(profile.ID), data, c.config.ProfileTTL).Err()
}
