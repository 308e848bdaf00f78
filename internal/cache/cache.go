// Package cache stores previously computed answers in Redis, keyed by an
// md5 digest of the raw question text. Storage failures are never surfaced:
// a broken cache only costs recomputation, never an answer.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "resposta:"

// DefaultTTL matches the original one-hour expiry.
const DefaultTTL = time.Hour

// store is the slice of the Redis API the cache needs. *redis.Client
// satisfies it; tests inject a fake.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis is an AnswerCache backed by a Redis server.
type Redis struct {
	store  store
	logger *zap.Logger
}

func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return newRedis(client, logger)
}

func newRedis(s store, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{store: s, logger: logger}
}

// Key derives the cache key for a question: fixed prefix plus the hex md5
// digest of the raw bytes. No normalization; only byte-identical questions
// share an entry.
func Key(question string) string {
	sum := md5.Sum([]byte(question))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached answer, or absent on miss, expiry, or any storage
// failure.
func (r *Redis) Get(ctx context.Context, question string) (string, bool) {
	val, err := r.store.Get(ctx, Key(question)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("answer cache read failed", zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores the answer with an absolute expiry of now + ttl, overwriting
// any entry for the same digest. Failures are logged and dropped.
func (r *Redis) Set(ctx context.Context, question, answer string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.store.SetEx(ctx, Key(question), answer, ttl).Err(); err != nil {
		r.logger.Warn("answer cache write failed", zap.Error(err))
	}
}
