package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/zeusync/sectors/internal/config"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/events/bus"
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/models/interfaces"
	"github.com/zeusync/sectors/internal/core/observability/log"
	"github.com/zeusync/sectors/internal/core/pool"
	"github.com/zeusync/sectors/internal/core/prefab"
	"github.com/zeusync/sectors/internal/core/sector"
)

// ManagerSet provides a *sector.Manager from a *config.Config and a component registry.
var ManagerSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvidePrefabLibrary,
	wire.Bind(new(interfaces.PrefabResolver), new(*prefab.Library)),
	ProvideEnv,
	ProvideManager,
)

// ProvideLogger builds the zap logger described by cfg. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.NewWithOptions(log.Options{Level: level, Encoding: cfg.Log.Encoding})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvidePrefabLibrary loads every configured prefab file. Components named by
// the files must already be registered.
func ProvidePrefabLibrary(ctx context.Context, cfg *config.Config, registry *components.Registry) (*prefab.Library, error) {
	lib := prefab.NewLibrary()
	if err := lib.LoadFiles(ctx, registry, cfg.Prefabs.Paths...); err != nil {
		return nil, fmt.Errorf("load prefabs: %w", err)
	}
	return lib, nil
}

func ProvideEnv(cfg *config.Config, prefabs interfaces.PrefabResolver, events bus.EventBus, logger log.Log) *pool.Env {
	return pool.NewEnv(prefabs, events, logger, pool.WithFirstID(models.EntityID(cfg.Identity.FirstID)))
}

// ProvideManager creates the manager with one pool per configured sector. The
// first sector is the default one.
func ProvideManager(cfg *config.Config, env *pool.Env) (*sector.Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := sector.NewManager(env, sector.WithDefaultSectorName(cfg.Sectors[0].Name))
	for _, s := range cfg.Sectors[1:] {
		m.AddPool(s.Name)
	}
	return m, nil
}
