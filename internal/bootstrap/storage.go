package bootstrap

import (
	"context"
	"fmt"
	"log"

	"fisiqia-be/internal/config"
	"fisiqia-be/internal/model"
	"fisiqia-be/internal/repository/contract"
	"fisiqia-be/internal/repository/implementation"
	"fisiqia-be/internal/repository/memory"
	"fisiqia-be/pkg/database"
)

// NewExchangeRepository picks the exchange store named by STORAGE_DRIVER.
// The returned closer releases the connection, if any.
func NewExchangeRepository(ctx context.Context, cfg config.StorageConfig) (contract.ExchangeRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "memory", "":
		log.Printf("[INFO] Using exchange storage: MEMORY (ttl %s)", cfg.SessionTTL)
		return memory.NewExchangeRepository(cfg.SessionTTL), noop, nil

	case "redis":
		client, err := implementation.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("[INFO] Using exchange storage: REDIS (ttl %s)", cfg.SessionTTL)
		return implementation.NewExchangeRedisRepository(client, cfg.SessionTTL), client.Close, nil

	case database.DriverPostgres, database.DriverSQLite:
		db, err := database.NewGormDB(database.GormConfig{Driver: cfg.Driver, DSN: cfg.Connection})
		if err != nil {
			return nil, noop, err
		}
		if err := database.Migrate(db, &model.Exchange{}); err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		log.Printf("[INFO] Using exchange storage: %s", cfg.Driver)
		return implementation.NewExchangeRepository(db), sqlDB.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
