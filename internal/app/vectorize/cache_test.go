package vectorize

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/model"
)

type memoryCache struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     time.Duration
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return redis.NewStringResult("", m.readErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	m.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

type countingVectorizer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingVectorizer) Vectorize(ctx context.Context, modality model.Modality, value string) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(value)), 0.5}, nil
}

func TestCachedVectorizerHitsCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	next := &countingVectorizer{}
	v := NewCachedVectorizer(next, cache, time.Hour, nil)

	first, err := v.Vectorize(ctx, model.ModalityAudio, "abcd")
	require.NoError(t, err)
	second, err := v.Vectorize(ctx, model.ModalityAudio, "abcd")
	require.NoError(t, err)

	assert.Equal(t, []float32{4, 0.5}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, time.Hour, cache.ttl)
	assert.Contains(t, cache.data, CacheKey(model.ModalityAudio, "abcd"))
}

func TestCachedVectorizerReadErrorFallsThrough(t *testing.T) {
	cache := newMemoryCache()
	cache.readErr = fmt.Errorf("connection refused")
	next := &countingVectorizer{}
	v := NewCachedVectorizer(next, cache, time.Minute, nil)

	vector, err := v.Vectorize(context.Background(), model.ModalityAudio, "ab")

	require.NoError(t, err)
	assert.Equal(t, []float32{2, 0.5}, vector)
	assert.Equal(t, 1, next.calls)
}

type blockingVectorizer struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
	ctxErr  error
}

func (b *blockingVectorizer) Vectorize(ctx context.Context, modality model.Modality, value string) ([]float32, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.started)
	<-b.release
	b.mu.Lock()
	b.ctxErr = ctx.Err()
	b.mu.Unlock()
	return []float32{1, 2}, nil
}

func TestCachedVectorizerCancelledCallerDoesNotFailOthers(t *testing.T) {
	next := &blockingVectorizer{started: make(chan struct{}), release: make(chan struct{})}
	v := NewCachedVectorizer(next, newMemoryCache(), time.Minute, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := v.Vectorize(cancelled, model.ModalityAudio, "clip")
		firstErr <- err
	}()
	<-next.started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		vector []float32
		err    error
	}
	second := make(chan result, 1)
	go func() {
		vector, err := v.Vectorize(context.Background(), model.ModalityAudio, "clip")
		second <- result{vector, err}
	}()
	close(next.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, []float32{1, 2}, res.vector)

	next.mu.Lock()
	defer next.mu.Unlock()
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, next.ctxErr)
}

func TestCachedVectorizerDoesNotCacheErrors(t *testing.T) {
	cache := newMemoryCache()
	next := &countingVectorizer{err: fmt.Errorf("503")}
	v := NewCachedVectorizer(next, cache, time.Minute, nil)

	_, err := v.Vectorize(context.Background(), model.ModalityAudio, "ab")

	assert.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey(model.ModalityAudio, "x"), CacheKey(model.ModalityAudio, "x"))
	assert.NotEqual(t, CacheKey(model.ModalityAudio, "x"), CacheKey(model.ModalityText, "x"))
	assert.Regexp(t, `^vcs:vec:[0-9a-f]{64}$`, CacheKey(model.ModalityImage, "x"))
}
