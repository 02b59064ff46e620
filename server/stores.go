package server

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"oauth-gateway/config"
	"oauth-gateway/logger"
	"oauth-gateway/store"
	"oauth-gateway/store/redisstore"
	"oauth-gateway/store/sqlstore"
)

// stores bundles the three persistence concerns plus whatever needs closing
// on shutdown.
type stores struct {
	clients store.ClientStore
	codes   store.CodeStore
	tokens  store.TokenStore
	closers []io.Closer
}

func (s *stores) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logger.Warn("Store close failed", zap.Error(err))
		}
	}
}

// buildStores constructs the persistence layer for the configured driver.
//
// memory: everything in process, lost on restart.
// sqlite: clients and tokens in SQLite; codes stay in memory because they
// live for minutes and their single-use redemption wants one lock, not a
// transaction.
// redis:  codes and tokens in Redis with native TTL expiry; client
// registrations stay in memory.
func buildStores(ctx context.Context, cfg *config.StorageConfig) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return &stores{
			clients: store.NewMemoryClientStore(),
			codes:   store.NewMemoryCodeStore(),
			tokens:  store.NewMemoryTokenStore(),
		}, nil

	case config.DriverSQLite:
		db, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &stores{
			clients: db,
			codes:   store.NewMemoryCodeStore(),
			tokens:  db,
			closers: []io.Closer{db},
		}, nil

	case config.DriverRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return &stores{
			clients: store.NewMemoryClientStore(),
			codes:   redisstore.NewCodeStore(client),
			tokens:  redisstore.NewTokenStore(client),
			closers: []io.Closer{client},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
