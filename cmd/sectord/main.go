package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/sectors/internal/config"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/events/bus"
	"github.com/zeusync/sectors/internal/core/observability/log"
	"github.com/zeusync/sectors/internal/core/sector"
	"github.com/zeusync/sectors/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml config file")
	prefabName := flag.String("prefab", "", "prefab to spawn into the default sector")
	count := flag.Int("count", 1, "number of entities to spawn")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *prefabName, *count); err != nil {
		fmt.Fprintln(os.Stderr, "sectord:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, prefabName string, count int) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	m, cleanup, err := injector.InitializeManager(ctx, cfg, components.NewRegistry())
	if err != nil {
		return err
	}
	defer cleanup()

	logger := m.Env().Logger()
	created := 0
	sub, err := m.Env().Events().Subscribe(bus.EntityCreated, func(bus.Event) error {
		created++
		return nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Cancel() }()

	if prefabName != "" {
		for range count {
			if ctx.Err() != nil {
				break
			}
			if m.CreateFromPrefabName(prefabName).IsNull() {
				return fmt.Errorf("unknown prefab %q", prefabName)
			}
		}
	}

	report(logger, m)
	logger.Info("spawn finished", log.Int("created", created), log.Int("total", m.ActiveEntityCount()))
	return nil
}

func report(logger log.Log, m *sector.Manager) {
	for _, p := range m.Pools() {
		logger.Info("sector", log.Sector(p.Name()), log.Int("entities", p.ActiveEntityCount()))
	}
}
