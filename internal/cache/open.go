package cache

import (
	"context"
	"database/sql"
	"fmt"

	"morfi-plan/internal/config"
)

// Open builds the backend selected by cfg.CacheBackend. The returned
// close function releases backend resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, db *sql.DB) (Cache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CacheBackend {
	case config.CacheFile:
		c, err := NewFileCache(cfg.CacheDir)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil

	case config.CacheRedis:
		c := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, 0, "morfi:")
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return nil, noop, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return c, c.Close, nil

	default:
		return NewSQLiteCache(db), noop, nil
	}
}
