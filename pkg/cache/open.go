package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/masonry/pkg/observability"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Dir           string // file
	RedisURL      string // redis
	Prefix        string // redis key prefix
	MongoURI      string // mongo
	MongoDatabase string // mongo
}

// Open builds the configured backend wrapped with observability hooks.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err = NewFileCache(cfg.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, DefaultMongoCollection)
	case BackendNone:
		c = NewNullCache()
	default:
		return nil, fmt.Errorf("%w: %q (want file, redis, mongo or none)", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return WithHooks(c), nil
}

// WithHooks reports every Get and Set on c to observability.Cache().
func WithHooks(c Cache) Cache {
	if _, ok := c.(*hooked); ok {
		return c
	}
	return &hooked{inner: c}
}

// Unwrap returns the backend behind WithHooks, or c itself.
func Unwrap(c Cache) Cache {
	if h, ok := c.(*hooked); ok {
		return h.inner
	}
	return c
}

type hooked struct {
	inner Cache
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := h.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := h.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

func (h *hooked) Delete(ctx context.Context, key string) error { return h.inner.Delete(ctx, key) }
func (h *hooked) Close() error                                 { return h.inner.Close() }

func (h *hooked) Clear(ctx context.Context) (int, error) {
	if cl, ok := h.inner.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, fmt.Errorf("cache backend %T cannot be cleared", h.inner)
}
