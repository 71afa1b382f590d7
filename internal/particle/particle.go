// Package particle implements the bounded pool of short-lived point effects.
package particle

import (
	"math"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/easing"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// ID identifies a particle. IDs increase monotonically per pool.
type ID = uint64

// Motion selects how a particle's position evolves.
type Motion uint8

const (
	// MotionKinematic integrates velocity and gravity once per tick.
	MotionKinematic Motion = iota
	// MotionArc follows a projectile arc from the spawn point to Target,
	// lifted by sin(progress·π)·Height.
	MotionArc
	// MotionSpiral winds outwards around the spawn point while rising.
	MotionSpiral
)

// Params describes one particle to spawn. Zero Scale and Opacity mean 1.
type Params struct {
	Position      fx.Vec2
	Velocity      fx.Vec2
	Gravity       float64
	Rotation      float64
	RotationSpeed float64
	Scale         float64
	Opacity       float64
	Fade          bool
	Duration      time.Duration
	Hint          string // colour or sprite, passed through to the renderer
	Tag           string // owner tag, e.g. "weather:rain"

	Motion Motion
	Target fx.Vec2 // arc end point
	Height float64 // arc apex height, spiral rise
	Radius float64 // spiral end radius
	Turns  float64 // spiral revolutions over the lifetime
	Angle  float64 // spiral start angle (radians)
}

// Particle is a short-lived visual effect owned by a Pool.
type Particle struct {
	ID            ID
	Position      fx.Vec2
	Velocity      fx.Vec2
	Gravity       float64
	Rotation      float64
	RotationSpeed float64
	Scale         float64
	Opacity       float64
	Fade          bool
	CreatedAt     time.Time
	Duration      time.Duration
	Hint          string
	Tag           string

	motion   Motion
	origin   fx.Vec2
	target   fx.Vec2
	height   float64
	radius   float64
	turns    float64
	angle    float64
	opacity0 float64
}

func newParticle(id ID, now time.Time, p Params) Particle {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	opacity := p.Opacity
	if opacity == 0 {
		opacity = 1
	}
	opacity = easing.Clamp01(opacity)

	return Particle{
		ID:            id,
		Position:      p.Position,
		Velocity:      p.Velocity,
		Gravity:       p.Gravity,
		Rotation:      p.Rotation,
		RotationSpeed: p.RotationSpeed,
		Scale:         scale,
		Opacity:       opacity,
		Fade:          p.Fade,
		CreatedAt:     now,
		Duration:      p.Duration,
		Hint:          p.Hint,
		Tag:           p.Tag,
		motion:        p.Motion,
		origin:        p.Position,
		target:        p.Target,
		height:        p.Height,
		radius:        p.Radius,
		turns:         p.Turns,
		angle:         p.Angle,
		opacity0:      opacity,
	}
}

// Progress returns the normalized age of the particle at now, in [0,1].
func (p *Particle) Progress(now time.Time) float64 {
	if p.Duration <= 0 {
		return 1
	}
	return easing.Clamp01(float64(now.Sub(p.CreatedAt)) / float64(p.Duration))
}

// Expired reports whether the particle has outlived its duration.
func (p *Particle) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) >= p.Duration
}

// step advances the particle by one tick.
func (p *Particle) step(progress float64) {
	switch p.motion {
	case MotionArc:
		pos := p.origin.Lerp(p.target, progress)
		pos.Y -= math.Sin(progress*math.Pi) * p.height
		p.Position = pos
	case MotionSpiral:
		theta := p.angle + progress*p.turns*2*math.Pi
		r := p.radius * progress
		p.Position = fx.Vec2{
			X: p.origin.X + math.Cos(theta)*r,
			Y: p.origin.Y + math.Sin(theta)*r*0.5 - p.height*progress,
		}
	default:
		p.Velocity.Y += p.Gravity
		p.Position = p.Position.Add(p.Velocity)
	}

	p.Rotation += p.RotationSpeed
	if p.Fade {
		p.Opacity = easing.Clamp01(p.opacity0 * (1 - progress))
	}
}

func (p *Particle) command() fx.Command {
	return fx.Command{
		Source: fx.SourceParticle,
		Handle: fx.ParticleHandle(p.ID),
		Transform: fx.Transform{
			Translate: p.Position,
			Absolute:  true,
			Scale:     p.Scale,
			Rotate:    p.Rotation,
			Opacity:   p.Opacity,
		},
		Hint: p.Hint,
	}
}
