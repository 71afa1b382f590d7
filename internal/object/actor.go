package object

import (
	"math"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Actor is a drawable bound to an effect handle: a character, building or
// UI element the demo scene owns.
type Actor struct {
	Handle fx.Handle
	Label  string
	// Pos is the rest position. Absolute commands move it.
	Pos fx.Vec2
	// Shape is the outline relative to Pos. Frames, when set, replace it by
	// the transform's frame index.
	Shape  []draw.Point
	Frames [][]draw.Point
	Filled bool
	// Radius is the pick radius; zero derives it from the outline.
	Radius float64
}

// ActorState is an actor as it should appear in one published view.
type ActorState struct {
	Handle    fx.Handle    `json:"handle"`
	Label     string       `json:"label,omitempty"`
	Pos       fx.Vec2      `json:"pos"`
	Transform fx.Transform `json:"transform"`
	Outline   []draw.Point `json:"outline"`
	Filled    bool         `json:"filled,omitempty"`
	Radius    float64      `json:"radius"`
	Hint      string       `json:"hint,omitempty"`
}

func (a *Actor) outline(frame int) []draw.Point {
	if n := len(a.Frames); n > 0 {
		return a.Frames[((frame%n)+n)%n]
	}
	return a.Shape
}

func (a *Actor) radius() float64 {
	if a.Radius > 0 {
		return a.Radius
	}
	r := 1.0
	for _, p := range a.outline(0) {
		r = max(r, math.Hypot(p.X, p.Y))
	}
	return r
}

// Points returns the outline transformed for drawing: scaled, rotated
// (degrees) and moved to the actor's position.
func (s ActorState) Points() []draw.Point {
	sc := s.Transform.Scale
	sin, cos := math.Sincos(s.Transform.Rotate * math.Pi / 180)
	pts := make([]draw.Point, len(s.Outline))
	for i, p := range s.Outline {
		x, y := p.X*sc, p.Y*sc
		pts[i] = draw.Point{
			X: s.Pos.X + x*cos - y*sin,
			Y: s.Pos.Y + x*sin + y*cos,
		}
	}
	return pts
}

// Visible reports whether the actor is opaque enough to draw.
func (s ActorState) Visible() bool {
	return s.Transform.Opacity >= draw.MinVisibleOpacity && s.Transform.Scale > 0
}

// Draw renders the actor's outline on the canvas. Outlines are filled when
// the actor is filled and mostly opaque.
func (s ActorState) Draw(ctx DrawContext) error {
	if !s.Visible() {
		return nil
	}
	pts := s.Points()
	if len(pts) == 1 {
		ctx.Canvas.Dot(pts[0].X, pts[0].Y, s.Transform.Scale)
		return nil
	}
	ctx.Canvas.DrawPolygon(pts, s.Filled && s.Transform.Opacity >= 0.75)
	return nil
}
