package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedClassifier memoizes classification results in Redis, keyed by a hash
// of the normalized description. Cache failures degrade to the inner
// classifier; a stale cache can only ever return a result the inner
// classifier previously produced.
type CachedClassifier struct {
	inner  Classifier
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClassifier wraps inner with a Redis cache.
func NewCachedClassifier(inner Classifier, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedClassifier {
	return &CachedClassifier{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Classify serves from cache when possible.
func (c *CachedClassifier) Classify(ctx context.Context, description string) (Result, error) {
	trimmed, err := ValidateDescription(description)
	if err != nil {
		return Result{}, err
	}

	key := cacheKey(trimmed)
	if c.client != nil {
		cached, err := c.client.Get(ctx, key).Result()
		if err == nil {
			var result Result
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result, nil
			}
		} else if err != redis.Nil {
			c.logger.Debug("classification cache read failed", zap.Error(err))
		}
	}

	result, err := c.inner.Classify(ctx, trimmed)
	if err != nil {
		return Result{}, err
	}

	if c.client != nil {
		if encoded, err := json.Marshal(result); err == nil {
			if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
				c.logger.Debug("classification cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}

func cacheKey(description string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(description)))
	return "classify:" + hex.EncodeToString(sum[:])
}
