// Package storage persists small string-valued client state (language,
// theme, admin token, display identity) in a key/value store.
package storage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"affiliate-catalog/internal/db"
	"affiliate-catalog/internal/migrate"
	"github.com/go-redis/redis/v8"
)

// KV is a string key/value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open picks a backend from the DSN scheme: memory://, sqlite://<path>,
// mysql://<driver dsn>, postgres://..., redis://...
func Open(ctx context.Context, dsn string, logger *log.Logger) (KV, error) {
	scheme, rest, _ := strings.Cut(dsn, "://")
	switch scheme {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(rest)
	case "mysql":
		return NewMySQL(rest)
	case "postgres", "postgresql":
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		return NewPostgres(pool, logger), nil
	case "redis", "rediss":
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(client, DefaultRedisPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported state dsn %q", dsn)
	}
}
