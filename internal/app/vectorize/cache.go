package vectorize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"video-search/internal/app/logging"
	"video-search/internal/app/metrics"
	"video-search/internal/app/model"
)

const keyPrefix = "vcs:vec:"

// Vectorizer matches the store's query vectorizer.
type Vectorizer interface {
	Vectorize(ctx context.Context, modality model.Modality, value string) ([]float32, error)
}

// Cache is the subset of a Redis client the cache needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedVectorizer memoizes vectors in Redis.
// Concurrent lookups of the same value share one upstream call.
type CachedVectorizer struct {
	next   Vectorizer
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedVectorizer wraps next with a Redis cache.
func NewCachedVectorizer(next Vectorizer, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedVectorizer {
	return &CachedVectorizer{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logging.OrNop(logger),
	}
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// CacheKey derives the cache key of a modality/value pair.
func CacheKey(modality model.Modality, value string) string {
	h := sha256.New()
	h.Write([]byte(modality))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Vectorize serves from the cache when possible. Cache errors are logged and
// fall through to the wrapped vectorizer.
// The shared call is detached from the caller's cancellation; each caller
// stops waiting when its own ctx is done.
func (c *CachedVectorizer) Vectorize(ctx context.Context, modality model.Modality, value string) ([]float32, error) {
	key := CacheKey(modality, value)
	shared := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if vector, ok := c.lookup(shared, key); ok {
			metrics.VectorizerCacheTotal.WithLabelValues("hit").Inc()
			return vector, nil
		}
		metrics.VectorizerCacheTotal.WithLabelValues("miss").Inc()

		vector, err := c.next.Vectorize(shared, modality, value)
		if err != nil {
			return nil, err
		}
		c.store(shared, key, vector)
		return vector, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *CachedVectorizer) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("vector cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		c.logger.Warn("vector cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vector, true
}

func (c *CachedVectorizer) store(ctx context.Context, key string, vector []float32) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("vector cache write failed", zap.Error(err))
	}
}
