package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/content-cms-api/internal/domain/apikey"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultAPIKeyTTL = 30 * time.Second
	// generations must outlive any lookup still in flight when the key was evicted.
	generationTTL = 24 * time.Hour
)

// Cache is the subset of the Redis client used by CachedAPIKeyRepository.
type Cache interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
}

// setIfGeneration stores the entry only while the digest's generation is the one observed
// before the store was read. KEYS: generation, entry. ARGV: generation, payload, ttl ms.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[1])
if not gen then gen = '0' end
if gen ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// bumpGeneration invalidates lookups in flight and drops the entry. KEYS: generation, entry.
// ARGV: generation ttl ms.
var bumpGeneration = redis.NewScript(`
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return 1
`)

// CachedAPIKeyRepository caches digest lookups in front of an apikey.Repository. Writes that
// change a key's state evict its entry and bump a per-digest generation; a lookup that read the
// store before such a write cannot repopulate the cache with what it saw.
type CachedAPIKeyRepository struct {
	apikey.Repository
	client Cache
	ttl    time.Duration
	logger *zap.Logger
}

// cachedKey keeps the digest that APIKey hides from JSON.
type cachedKey struct {
	apikey.APIKey
	Hash string `json:"key_hash"`
}

func NewCachedAPIKeyRepository(repo apikey.Repository, client Cache, ttl time.Duration, logger *zap.Logger) *CachedAPIKeyRepository {
	if ttl <= 0 {
		ttl = defaultAPIKeyTTL
	}
	return &CachedAPIKeyRepository{
		Repository: repo,
		client:     client,
		ttl:        ttl,
		logger:     logger.Named("APIKeyCache"),
	}
}

var _ apikey.Repository = (*CachedAPIKeyRepository)(nil)

func cacheKey(keyHash string) string {
	return fmt.Sprintf("auth:apikey:hash:%s", keyHash)
}

func generationKey(keyHash string) string {
	return fmt.Sprintf("auth:apikey:gen:%s", keyHash)
}

// FindByHash serves from Redis when possible. Cache failures fall through to the store; misses
// on the store are not cached.
func (c *CachedAPIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	ck, gk := cacheKey(keyHash), generationKey(keyHash)

	raw, err := c.client.Get(ctx, ck).Bytes()
	switch {
	case err == nil:
		var entry cachedKey
		jsonErr := json.Unmarshal(raw, &entry)
		if jsonErr == nil {
			key := entry.APIKey
			key.KeyHash = entry.Hash
			return &key, nil
		}
		c.logger.Debug("Discarding undecodable cache entry", zap.Error(jsonErr))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("API key cache read failed", zap.Error(err))
	}

	gen, genErr := c.client.Get(ctx, gk).Result()
	if errors.Is(genErr, redis.Nil) {
		gen, genErr = "0", nil
	}

	key, err := c.Repository.FindByHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		// without a generation the entry could not be guarded against a concurrent eviction
		return key, nil
	}

	payload, err := json.Marshal(cachedKey{APIKey: *key, Hash: key.KeyHash})
	if err != nil {
		c.logger.Warn("Failed to encode API key for cache", zap.Error(err))
		return key, nil
	}
	stored, err := setIfGeneration.Run(ctx, c.client, []string{gk, ck}, gen, payload, c.ttl.Milliseconds()).Int()
	switch {
	case err != nil:
		c.logger.Warn("Failed to cache API key", zap.Error(err))
	case stored == 0:
		c.logger.Debug("Skipped caching API key changed during lookup", zap.String("key_id", key.ID.String()))
	}
	return key, nil
}

func (c *CachedAPIKeyRepository) Update(ctx context.Context, owner, id uuid.UUID, upd apikey.Update) (*apikey.APIKey, error) {
	key, err := c.Repository.Update(ctx, owner, id, upd)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, key)
	return key, nil
}

func (c *CachedAPIKeyRepository) Delete(ctx context.Context, owner, id uuid.UUID) (*apikey.APIKey, error) {
	key, err := c.Repository.Delete(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, key)
	return key, nil
}

func (c *CachedAPIKeyRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]*apikey.APIKey, error) {
	keys, err := c.Repository.DeactivateExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, keys...)
	return keys, nil
}

func (c *CachedAPIKeyRepository) evict(ctx context.Context, keys ...*apikey.APIKey) {
	for _, k := range keys {
		err := bumpGeneration.Run(ctx, c.client, []string{generationKey(k.KeyHash), cacheKey(k.KeyHash)}, generationTTL.Milliseconds()).Err()
		if err != nil {
			c.logger.Error("Failed to evict API key from cache", zap.String("key_id", k.ID.String()), zap.Error(err))
		}
	}
}
