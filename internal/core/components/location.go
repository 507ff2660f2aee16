package components

import (
	"github.com/zeusync/sectors/internal/core/models"
	"github.com/zeusync/sectors/pkg/geom"
)

const LocationName = "location"

// LocationKind is the kind of Location.
var LocationKind = KindOf(LocationName)

// Location places an entity in the world. Pools write the position and rotation
// given to positional create calls into it when the prefab carries one.
type Location struct {
	Position geom.Vec3 `yaml:"position"`
	Rotation geom.Quat `yaml:"rotation"`
}

func (l *Location) Kind() models.ComponentKind { return LocationKind }

func (l *Location) Clone() models.Component {
	c := *l
	return &c
}

// DefaultRotation is the rotation a fresh Location starts with.
func DefaultRotation() geom.Quat { return geom.Identity }
