package emotion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/emotewire/emotewire/internal/domain"
	"github.com/emotewire/emotewire/internal/metrics"
)

const (
	classifyCachePrefix = "classify_cache:"
	classifyCacheTTL    = 15 * time.Minute
)

// CachedClassifier provides read-through caching of classification results:
// Redis → wrapped classifier. Cache traffic is best-effort; any redis
// failure falls through to the wrapped classifier. Concurrent calls for the
// same text collapse into one upstream call via singleflight.
//
// Keys are a hash of the (already truncated) text, so the raw message never
// appears in redis.
type CachedClassifier struct {
	rdb   goredis.Cmdable
	inner domain.Classifier
	group singleflight.Group
}

// NewCachedClassifier wraps inner with a redis read-through cache.
func NewCachedClassifier(rdb goredis.Cmdable, inner domain.Classifier) *CachedClassifier {
	return &CachedClassifier{rdb: rdb, inner: inner}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return classifyCachePrefix + hex.EncodeToString(sum[:])
}

// Classify returns the cached ranking for text when present, otherwise
// calls the wrapped classifier and populates the cache.
func (c *CachedClassifier) Classify(ctx context.Context, text string) ([]domain.Prediction, error) {
	key := cacheKey(text)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var preds []domain.Prediction
		if err := json.Unmarshal(data, &preds); err != nil {
			slog.Warn("Failed to unmarshal cached classification, falling through", "error", err)
		} else {
			metrics.ClassificationCacheHits.Inc()
			return preds, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		slog.Warn("Redis classification cache GET failed, falling through", "error", err)
	}

	metrics.ClassificationCacheMisses.Inc()

	result, err, _ := c.group.Do(key, func() (any, error) {
		preds, err := c.inner.Classify(ctx, text)
		if err != nil {
			return nil, err
		}

		// Populate cache (best-effort)
		if encoded, err := json.Marshal(preds); err == nil {
			if err := c.rdb.Set(ctx, key, encoded, classifyCacheTTL).Err(); err != nil {
				slog.Warn("Failed to populate classification cache", "error", err)
			}
		}
		return preds, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Prediction), nil
}
