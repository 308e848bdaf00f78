package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory stand-in for the Redis client.
type fakeStore struct {
	entries map[string]string
	ttls    map[string]time.Duration
	failing bool
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failing {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	val, ok := f.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeStore) SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failing {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.sets++
	f.entries[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestKeyFormat(t *testing.T) {
	// md5("hello") pinned so persisted caches stay readable across versions
	assert.Equal(t, "resposta:5d41402abc4b2a76b9719d911017c592", Key("hello"))
}

func TestKeyIsByteExact(t *testing.T) {
	assert.NotEqual(t, Key("pergunta"), Key("Pergunta"))
	assert.NotEqual(t, Key("pergunta"), Key("pergunta "))
	assert.Equal(t, Key("pergunta"), Key("pergunta"))
}

func TestSetThenGet(t *testing.T) {
	store := newFakeStore()
	c := newRedis(store, nil)
	ctx := context.Background()

	c.Set(ctx, "qual o horário?", "Das 9h às 18h.", time.Minute)
	got, ok := c.Get(ctx, "qual o horário?")
	assert.True(t, ok)
	assert.Equal(t, "Das 9h às 18h.", got)
	assert.Equal(t, time.Minute, store.ttls[Key("qual o horário?")])
}

func TestGetMiss(t *testing.T) {
	c := newRedis(newFakeStore(), nil)
	_, ok := c.Get(context.Background(), "nunca perguntado")
	assert.False(t, ok)
}

func TestOverwriteSameQuestion(t *testing.T) {
	store := newFakeStore()
	c := newRedis(store, nil)
	ctx := context.Background()

	c.Set(ctx, "q", "primeira", time.Minute)
	c.Set(ctx, "q", "segunda", time.Minute)
	got, ok := c.Get(ctx, "q")
	assert.True(t, ok)
	assert.Equal(t, "segunda", got)
}

func TestStoreFailureIsSwallowed(t *testing.T) {
	store := newFakeStore()
	store.failing = true
	c := newRedis(store, nil)
	ctx := context.Background()

	// neither call panics or errors; get degrades to a miss
	c.Set(ctx, "q", "resposta", time.Minute)
	_, ok := c.Get(ctx, "q")
	assert.False(t, ok)
	assert.Zero(t, store.sets)
}

func TestDefaultTTLApplied(t *testing.T) {
	store := newFakeStore()
	c := newRedis(store, nil)

	c.Set(context.Background(), "q", "resposta", 0)
	assert.Equal(t, DefaultTTL, store.ttls[Key("q")])
}
