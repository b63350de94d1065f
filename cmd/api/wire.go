package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"accidentapi/internal/ai"
	"accidentapi/internal/config"
	"accidentapi/internal/database"
	"accidentapi/internal/database/migration"
	"accidentapi/internal/repository"
	"accidentapi/internal/repository/jsonfile"
	"accidentapi/internal/repository/sqlstore"
)

// openStore opens the configured ticket store. SQL backends are migrated
// first when migrate is set.
func openStore(ctx context.Context, cfg *config.AppConfig, log *slog.Logger, migrate bool) (repository.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreJSON, "":
		log.Info("store_open", "backend", config.StoreJSON, "path", cfg.Store.JSONPath)
		return jsonfile.Open(cfg.Store.JSONPath)
	case config.StoreSQLite, config.StorePostgres:
		dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if migrate {
			if err := migration.EnsureMigrated(ctx, db, dialect, log); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		log.Info("store_open", "backend", dialect.String())
		return sqlstore.New(db, dialect), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// newSpeaker returns the OpenAI speaker, wrapped by the Redis audio cache when
// Redis is configured. The returned close func is never nil.
func newSpeaker(ctx context.Context, client *ai.OpenAI, cfg config.RedisConfig, log *slog.Logger) (ai.Speaker, func() error) {
	if cfg.Addr == "" {
		return client, func() error { return nil }
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// CachedSpeaker falls through to the provider while Redis is down.
		log.Warn("redis_unavailable", "address", cfg.Addr, "error", err)
	} else {
		log.Info("redis_connected", "address", cfg.Addr)
	}
	return ai.NewCachedSpeaker(client, rdb, cfg.TTSTTL, log.With("component", "tts_cache")), rdb.Close
}

// ensureJWTSecret fills in a random signing key when none is configured.
// Tokens then stop validating after a restart.
func ensureJWTSecret(cfg *config.AuthConfig, log *slog.Logger) error {
	if cfg.JWTSecret != "" {
		return nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generate jwt secret: %w", err)
	}
	cfg.JWTSecret = hex.EncodeToString(b)
	log.Warn("jwt_secret_generated", "detail", "JWT_SECRET is unset, tokens will not survive a restart")
	return nil
}
