package main

import (
	"context"
	"fmt"

	"laluna/internal/config"
	"laluna/internal/core/events"
	"laluna/internal/core/idempotency"
	"laluna/internal/core/tx"
	"laluna/internal/domain/auth"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/order"
	"laluna/internal/infrastructure/http/v1/handlers"
	"laluna/internal/infrastructure/storage/memory"
	"laluna/internal/infrastructure/storage/postgres"
	"laluna/internal/infrastructure/storage/postgres/auth_repo"
	"laluna/internal/infrastructure/storage/postgres/customer_repo"
	"laluna/internal/infrastructure/storage/postgres/inventory_repo"
	"laluna/internal/infrastructure/storage/postgres/order_repo"
	"laluna/pkg/logger"
)

// backend bundles the repositories and transaction plumbing of one storage
// implementation.
type backend struct {
	customers   customer.Repository
	orders      order.Repository
	inventory   inventory.Repository
	users       auth.UserRepository
	txManager   tx.Manager
	publisher   events.Publisher
	idempotency idempotency.Store
	pinger      handlers.Pinger
	stats       func() any

	// seedOnStart is set for the memory store, which starts empty on every run.
	seedOnStart bool
	close       func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		store := memory.New()
		return &backend{
			customers:   store.Customers(),
			orders:      store.Orders(),
			inventory:   store.Inventory(),
			users:       store.Users(),
			txManager:   store,
			publisher:   store,
			idempotency: memory.NewIdempotencyStore(idempotency.DefaultTTL),
			pinger:      store,
			seedOnStart: true,
			close:       func() {},
		}, nil
	}

	if cfg.AutoMigrate {
		if err := migrateUp(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		log.Info("database migrations applied")
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	log.Infow("database connection established", "max_conns", poolCfg.MaxConns)

	txManager := postgres.NewTxManager(pool)
	return &backend{
		customers:   customer_repo.NewCustomerRepo(txManager),
		orders:      order_repo.NewOrderRepo(txManager),
		inventory:   inventory_repo.NewInventoryRepo(txManager),
		users:       auth_repo.NewUserRepo(txManager),
		txManager:   txManager,
		publisher:   postgres.NewOutboxPublisher(txManager),
		idempotency: postgres.NewIdempotencyStore(txManager, idempotency.DefaultTTL),
		pinger:      txManager,
		stats:       func() any { return pool.Stats() },
		close:       pool.Close,
	}, nil
}

func migrateUp(dsn string) error {
	migrator, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
