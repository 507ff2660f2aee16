// Profiling:
// go build ./cmd/sectorprof
// go tool pprof -http=":8000" -nodefraction=0.001 ./sectorprof cpu.pprof

package main

import (
	"flag"

	"github.com/pkg/profile"
	"github.com/zeusync/sectors/internal/core/components"
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/internal/core/observability/log"
	"github.com/zeusync/sectors/internal/core/pool"
	"github.com/zeusync/sectors/internal/core/prefab"
	"github.com/zeusync/sectors/internal/core/sector"
	"github.com/zeusync/sectors/pkg/geom"
)

func main() {
	mode := flag.String("mode", "cpu", "cpu or mem")
	rounds := flag.Int("rounds", 20, "rounds")
	sectors := flag.Int("sectors", 8, "pools per manager")
	entities := flag.Int("entities", 2000, "entities per pool")
	flag.Parse()

	var p interface{ Stop() }
	switch *mode {
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	run(*rounds, *sectors, *entities)
	p.Stop()
}

func run(rounds, sectors, perPool int) {
	lib := prefab.NewLibrary()
	_ = lib.Register(prefab.New("marker", &components.Location{Rotation: components.DefaultRotation()}))

	for range rounds {
		m := sector.NewManager(pool.NewEnv(lib, nil, log.NewNop()))
		for i := 1; i < sectors; i++ {
			m.AddPool("sector")
		}

		var ids []models.EntityID
		for _, p := range m.Pools() {
			for i := range perPool {
				ref := p.CreateNamedAt("marker", geom.Vec3{X: float32(i)})
				ids = append(ids, ref.ID())
			}
		}

		for _, id := range ids {
			if m.ExistingEntity(id).IsNull() || !m.HasComponent(id, components.LocationKind) {
				panic("entity lost")
			}
		}
		_ = m.EntitiesWith(components.LocationKind).Count()
		for _, ref := range m.AllEntities().Collect() {
			m.Destroy(ref.ID())
		}
		m.Clear()
	}
}
