// Package fx holds the vocabulary shared by every effects component: opaque
// target handles, transform snapshots, renderer commands and the enums the
// scheduler, its producers and its collaborators agree on.
package fx

import (
	"math"
	"strconv"
)

// Handle is an opaque identifier for a renderable thing. The renderer owns
// the mapping from a handle to a drawable; the engine only stores and
// returns it.
type Handle string

// ViewportHandle targets the whole viewport (screen shake).
const ViewportHandle Handle = "viewport"

// ParticleHandle returns the handle a particle is reported under.
func ParticleHandle(id uint64) Handle {
	return Handle("particle:" + strconv.FormatUint(id, 10))
}

// Vec2 represents a 2D coordinate or displacement.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * k.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Lerp interpolates from v towards o by t (unclamped).
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Len returns the vector magnitude.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}
