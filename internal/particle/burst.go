package particle

import (
	"math"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Pattern selects one of the emission shapes bursts are built from.
type Pattern uint8

const (
	// PatternRadial scatters particles in every direction from the origin.
	PatternRadial Pattern = iota
	// PatternArc throws particles along a projectile arc towards Target.
	PatternArc
	// PatternSpiral winds particles upwards around the origin.
	PatternSpiral
	// PatternStream emits a directional cone (rain, snow, sand).
	PatternStream
)

var patternNames = [...]string{"radial", "arc", "spiral", "stream"}

func (p Pattern) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return "unknown"
}

// Burst configures SpawnBurst.
type Burst struct {
	Pattern       Pattern
	Speed         float64       // initial speed per tick (radial, stream)
	Spread        float64       // radians of angular jitter; arc target jitter in units
	Direction     float64       // stream direction in radians, 0 = right, π/2 = down
	Gravity       float64       // per-tick vertical acceleration
	Duration      time.Duration // base lifetime
	Stagger       time.Duration // creation offset between consecutive particles
	Target        fx.Vec2       // arc end point
	Height        float64       // arc apex or spiral rise
	Radius        float64       // spiral radius
	Turns         float64       // spiral revolutions
	Scale         float64
	RotationSpeed float64
	Fade          bool
	Hint          string
	Tag           string
}

// SpawnBurst spawns count particles around origin following the burst's
// pattern. count <= 0 is a no-op.
func (p *Pool) SpawnBurst(now time.Time, origin fx.Vec2, count int, b Burst) []ID {
	if count <= 0 || p.capacity == 0 {
		return nil
	}

	ids := make([]ID, 0, count)
	for i := 0; i < count; i++ {
		params := p.burstParams(origin, i, count, b)
		var id ID
		var ok bool
		if i > 0 && b.Stagger > 0 {
			id, ok = p.schedule(now.Add(time.Duration(i)*b.Stagger), params)
		} else {
			id, ok = p.Spawn(now, params)
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// burstParams derives the i-th particle of a burst.
func (p *Pool) burstParams(origin fx.Vec2, i, count int, b Burst) Params {
	params := Params{
		Position:      origin,
		Gravity:       b.Gravity,
		Scale:         b.Scale,
		RotationSpeed: b.RotationSpeed * (0.5 + p.rng.Float64()),
		Fade:          b.Fade,
		Duration:      b.Duration,
		Hint:          b.Hint,
		Tag:           b.Tag,
	}

	switch b.Pattern {
	case PatternRadial:
		// Even angular spacing with jitter, speed 50%-150%, lifetime 50%-100%
		angle := float64(i)/float64(count)*2*math.Pi + (p.rng.Float64()-0.5)*b.Spread
		spd := b.Speed * (0.5 + p.rng.Float64())
		params.Velocity = fx.Vec2{X: math.Cos(angle) * spd, Y: math.Sin(angle) * spd}
		params.Duration = scaleDuration(b.Duration, 0.5+p.rng.Float64()*0.5)

	case PatternArc:
		params.Motion = MotionArc
		params.Target = fx.Vec2{
			X: b.Target.X + (p.rng.Float64()-0.5)*b.Spread,
			Y: b.Target.Y + (p.rng.Float64()-0.5)*b.Spread,
		}
		params.Height = b.Height

	case PatternSpiral:
		params.Motion = MotionSpiral
		params.Angle = float64(i) / float64(count) * 2 * math.Pi
		params.Radius = b.Radius * (0.75 + p.rng.Float64()*0.5)
		params.Turns = b.Turns
		params.Height = b.Height * (0.8 + p.rng.Float64()*0.4)

	case PatternStream:
		angle := b.Direction + (p.rng.Float64()-0.5)*b.Spread
		spd := b.Speed * (0.8 + p.rng.Float64()*0.4)
		params.Velocity = fx.Vec2{X: math.Cos(angle) * spd, Y: math.Sin(angle) * spd}
	}
	return params
}

func scaleDuration(d time.Duration, k float64) time.Duration {
	return time.Duration(float64(d) * k)
}
