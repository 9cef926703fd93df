// Package cli wires the configuration into a ready engine for the commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/internal/config"
	"github.com/aretw0/eventstorm/pkg/adapters/file"
	"github.com/aretw0/eventstorm/pkg/adapters/memory"
	"github.com/aretw0/eventstorm/pkg/adapters/redis"
	"github.com/aretw0/eventstorm/pkg/adapters/sqlite"
	"github.com/aretw0/eventstorm/pkg/observability"
	"github.com/aretw0/eventstorm/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// App is an engine built from configuration, plus what the commands need
// alongside it.
type App struct {
	Engine  *eventstorm.Engine
	Metrics *observability.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

// NewApp opens the store selected by cfg and builds an engine on it.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, locker, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.New(prometheus.NewRegistry())
	if err != nil {
		store.Close()
		return nil, err
	}

	opts := []eventstorm.Option{
		eventstorm.WithStore(store),
		eventstorm.WithLogger(logger),
		eventstorm.WithMetrics(metrics),
		eventstorm.WithFlowDefaults(cfg.Flow.MaxDepth, cfg.Flow.MaxElements),
		eventstorm.WithBalanceFactor(cfg.Query.BalanceFactor),
	}
	if locker != nil {
		opts = append(opts, eventstorm.WithLocker(locker))
	}

	engine, err := eventstorm.New(opts...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	logger.Debug("Engine ready", "driver", cfg.Storage.Driver, "locking", locker != nil)
	return &App{
		Engine:  engine,
		Metrics: metrics,
		Config:  cfg,
		Logger:  logger,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Engine.Close()
}

func openStore(cfg *config.Config) (ports.WorkshopStore, ports.DistributedLocker, error) {
	switch cfg.Storage.Driver {
	case "", "file":
		return file.New(cfg.Storage.Dir), nil, nil
	case "memory":
		return memory.NewStore(), nil, nil
	case "redis":
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		if !cfg.Redis.Lock {
			return store, nil, nil
		}
		return store, redis.NewLocker(store.Client(), cfg.Redis.Prefix), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database dir: %w", err)
		}
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q (expected file, memory, redis or sqlite)", cfg.Storage.Driver)
	}
}
