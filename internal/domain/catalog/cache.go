package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	categoriesCacheKey = "storefront:categories"
	DefaultCacheTTL    = 60 * time.Second
)

// KV is the subset of the redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedSource keeps the category list in redis for a short while. Category
// lookups happen on every catalog request while the list itself rarely
// changes. Product calls pass straight through.
type CachedSource struct {
	Source
	kv     KV
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCachedSource(src Source, kv KV, ttl time.Duration, logger *zap.SugaredLogger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{Source: src, kv: kv, ttl: ttl, logger: logger}
}

func (c *CachedSource) ListCategories(ctx context.Context) ([]Category, error) {
	raw, err := c.kv.Get(ctx, categoriesCacheKey).Bytes()
	switch {
	case err == nil:
		var cats []Category
		if jerr := json.Unmarshal(raw, &cats); jerr == nil {
			return cats, nil
		}
		c.logger.Warnw("discarding corrupt category cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warnw("category cache read failed", "error", err.Error())
	}

	cats, err := c.Source.ListCategories(ctx)
	if err != nil {
		// never cache a degraded answer
		return cats, err
	}

	payload, jerr := json.Marshal(cats)
	if jerr == nil {
		if serr := c.kv.Set(ctx, categoriesCacheKey, payload, c.ttl).Err(); serr != nil {
			c.logger.Warnw("category cache write failed", "error", serr.Error())
		}
	}
	return cats, nil
}

func (c *CachedSource) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return MatchSlug(cats, slug), nil
}
