package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/docstate/pkg/config"
	"github.com/dmitrymomot/docstate/pkg/httpserver"
	"github.com/dmitrymomot/docstate/pkg/mongo"
	"github.com/dmitrymomot/docstate/pkg/pg"
	"github.com/dmitrymomot/docstate/pkg/redis"
	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

// backend is the store selected by STORE_DRIVER with its readiness check and
// cleanup.
type backend struct {
	store  statemachine.Store[*Article]
	check  httpserver.Check
	close  func(context.Context) error
	schema func(context.Context, statemachine.Schema) error
}

func openBackend(ctx context.Context, cfg Config, log *slog.Logger) (*backend, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.StoreDriver {
	case DriverMemory, "":
		return &backend{
			store:  statemachine.NewMemoryStore[*Article](),
			check:  noop,
			close:  noop,
			schema: func(context.Context, statemachine.Schema) error { return nil },
		}, nil

	case DriverMongo:
		var mcfg mongo.Config
		if err := config.Load(&mcfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		coll := db.Collection(cfg.Collection)
		return &backend{
			store: mongo.NewStore[Article](coll),
			check: mongo.Healthcheck(db.Client()),
			close: db.Client().Disconnect,
			schema: func(ctx context.Context, s statemachine.Schema) error {
				if err := mongo.EnsureStateSchema(ctx, db, cfg.Collection, s); err != nil {
					return err
				}
				return mongo.EnsureStateIndexes(ctx, coll, s)
			},
		}, nil

	case DriverPostgres:
		var pcfg pg.Config
		if err := config.Load(&pcfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, pcfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		store, err := pg.NewStore[Article](pool, cfg.Collection)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			store: store,
			check: pg.Healthcheck(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
			schema: func(context.Context, statemachine.Schema) error { return nil },
		}, nil

	case DriverRedis:
		var rcfg redis.Config
		if err := config.Load(&rcfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return nil, err
		}
		return &backend{
			store: redis.NewStoreWithConfig[Article](client, rcfg),
			check: redis.Healthcheck(client),
			close: func(context.Context) error { return client.Close() },
			schema: func(context.Context, statemachine.Schema) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q: use %s, %s, %s or %s",
			cfg.StoreDriver, DriverMemory, DriverMongo, DriverPostgres, DriverRedis)
	}
}
