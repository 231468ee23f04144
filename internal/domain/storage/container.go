package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/wishlist"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type DBConfig struct {
	Addr         string
	MaxOpenConns int
	MaxIdleTime  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type Config struct {
	// WishlistDriver is one of memory, postgres or redis.
	WishlistDriver string
	WishlistTTL    time.Duration
	DB             DBConfig
	Redis          RedisConfig
}

// Container owns the connections behind wishlist persistence and the
// category cache.
type Container struct {
	pool  *pgxpool.Pool
	redis *redis.Client

	Wishlist wishlist.Persister
	// Cache is nil when no redis is configured.
	Cache catalog.KV
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	c := &Container{}

	if cfg.Redis.Enabled() {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := c.redis.Ping(ctx).Err(); err != nil {
			c.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		c.Cache = c.redis
	}

	switch strings.ToLower(strings.TrimSpace(cfg.WishlistDriver)) {
	case "", DriverMemory:
		c.Wishlist = wishlist.NewMemoryPersister()

	case DriverPostgres:
		pool, err := db.New(cfg.DB.Addr, int32(cfg.DB.MaxOpenConns), cfg.DB.MaxIdleTime)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		c.pool = pool
		p := wishlist.NewPostgresPersister(pool)
		if err := p.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("wishlist schema: %w", err)
		}
		c.Wishlist = p

	case DriverRedis:
		if c.redis == nil {
			return nil, fmt.Errorf("wishlist driver redis needs REDIS_ADDR")
		}
		c.Wishlist = wishlist.NewRedisPersister(c.redis, cfg.WishlistTTL)

	default:
		c.Close()
		return nil, fmt.Errorf("unknown wishlist driver %q", cfg.WishlistDriver)
	}

	return c, nil
}

// Pool is nil unless the postgres driver is in use.
func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Container) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
