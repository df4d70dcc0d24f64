package main

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/aretw0/psdrun/internal/config"
	"github.com/aretw0/psdrun/pkg/adapters/file"
	"github.com/aretw0/psdrun/pkg/adapters/memory"
	"github.com/aretw0/psdrun/pkg/adapters/redis"
	"github.com/aretw0/psdrun/pkg/persistence/middleware"
	"github.com/aretw0/psdrun/pkg/ports"
	"github.com/aretw0/psdrun/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// buildManager wires the snapshot store, the hint store with its middleware
// chain and, for Redis, the distributed locker. The returned func releases
// the Redis connection.
func buildManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session.Manager, func(), error) {
	cleanup := func() {}

	var client *backend.Client
	var redisStore *redis.Store
	if cfg.UsesRedis() {
		client = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		redisStore = redis.NewFromClient(client, redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL))
		cleanup = func() { client.Close() }
		logger.Info("connected to redis", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
	}

	var snapshots ports.SnapshotStore
	switch cfg.Sessions.Backend {
	case config.BackendFile:
		snapshots = file.New(cfg.Sessions.Path)
	case config.BackendRedis:
		snapshots = redisStore
	default:
		snapshots = memory.NewStore()
	}

	var hints ports.HintStore
	switch cfg.Hints.Backend {
	case config.BackendFile:
		hints = file.NewHintStore(cfg.Hints.Path)
	case config.BackendRedis:
		hints = redisStore
	default:
		var hopts []memory.HintOption
		if cfg.Hints.Expiration > 0 {
			hopts = append(hopts, memory.WithExpiration(cfg.Hints.Expiration))
		}
		hints = memory.NewHintStore(hopts...)
	}

	mws, err := hintMiddleware(cfg.Hints)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	opts := []session.Option{
		session.WithHintStore(middleware.Chain(hints, mws...)),
		session.WithLogger(logger),
	}
	if client != nil {
		opts = append(opts, session.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)))
	}
	logger.Info("stores ready", "sessions", cfg.Sessions.Backend, "hints", cfg.Hints.Backend, "middleware", len(mws))
	return session.NewManager(snapshots, opts...), cleanup, nil
}

func hintMiddleware(cfg config.HintsConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range cfg.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key %d: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	if len(cfg.RedactPatterns) > 0 {
		for _, p := range cfg.RedactPatterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("redact pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactionMiddleware(cfg.RedactPatterns))
	}
	return mws, nil
}
