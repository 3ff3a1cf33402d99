package app

import (
	"context"
	"database/sql"

	"oauth-login-service/internal/config"
	"oauth-login-service/internal/db"
	"oauth-login-service/internal/logger"
	"oauth-login-service/internal/redis"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	infra := &Infra{DB: &db.DB{DB: sqlDB}}

	// The memory backend skips redis entirely; useful for single-node
	// development setups.
	if cfg.SessionBackend != "memory" {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		logger.Info("redis ready", nil)
		infra.Redis = redisClient
	}

	return infra, nil
}
