// Package geom holds the position and rotation values the entity store passes
// through to components without interpreting them.
package geom

// Vec3 is a point or offset in world space.
type Vec3 struct {
	X float32 `yaml:"x" toml:"x"`
	Y float32 `yaml:"y" toml:"y"`
	Z float32 `yaml:"z" toml:"z"`
}

// Quat is a rotation quaternion.
type Quat struct {
	X float32 `yaml:"x" toml:"x"`
	Y float32 `yaml:"y" toml:"y"`
	Z float32 `yaml:"z" toml:"z"`
	W float32 `yaml:"w" toml:"w"`
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1}
