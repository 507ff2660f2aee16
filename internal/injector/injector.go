//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"
	"github.com/zeusync/sectors/internal/config"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/sector"
)

func InitializeManager(ctx context.Context, cfg *config.Config, registry *components.Registry) (*sector.Manager, func(), error) {
	wire.Build(ManagerSet)
	return nil, nil, nil
}
