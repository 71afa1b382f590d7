// Package weather implements the ambient weather state machine on top of
// the shared particle pool.
//
// Clear -> {Rain|Snow|Fog|Sandstorm} -> Clear. A switch between two
// non-clear kinds always removes the previous kind's particles first.
// Rain and snow emit single particles on independent randomized delays;
// fog and sandstorm emit a static overlay once per tick instead.
package weather

import (
	"math"
	"math/rand"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/easing"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/particle"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
)

// MaxEmitDelay caps the randomized delay between two emissions of one emitter.
const MaxEmitDelay = 3 * time.Second

// TierSource exposes the current quality tier.
type TierSource interface {
	Tier() fx.Tier
}

// Options configures an Engine.
type Options struct {
	Pool     *particle.Pool
	Tiers    TierSource
	Limits   quality.Table
	Viewport fx.Vec2 // width, height
	Rand     *rand.Rand
}

// Engine is the weather state machine.
type Engine struct {
	pool     *particle.Pool
	tiers    TierSource
	limits   quality.Table
	viewport fx.Vec2
	rng      *rand.Rand

	kind      fx.WeatherKind
	intensity float64
	since     time.Time
	emitters  []time.Time // next emission per emitter
	muted     bool        // emitters keep their schedule but spawn nothing
}

// New creates a clear-weather engine.
func New(opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		pool:     opts.Pool,
		tiers:    opts.Tiers,
		limits:   opts.Limits,
		viewport: opts.Viewport,
		rng:      rng,
	}
}

// Tag returns the particle tag used for kind's particles.
func Tag(kind fx.WeatherKind) string {
	return "weather:" + kind.String()
}

// Kind returns the current weather kind.
func (e *Engine) Kind() fx.WeatherKind {
	return e.kind
}

// Intensity returns the current intensity in [0,1].
func (e *Engine) Intensity() float64 {
	return e.intensity
}

// Emitters returns the number of active emitters.
func (e *Engine) Emitters() int {
	return len(e.emitters)
}

// SetEmitting turns particle emission on or off. A muted engine keeps its
// kind and emitter schedule, so unmuting resumes without a catch-up burst.
func (e *Engine) SetEmitting(on bool) {
	e.muted = !on
}

// SetWeather switches to kind at the given intensity. Setting the current
// kind again only updates the intensity. It reports whether the kind changed.
func (e *Engine) SetWeather(now time.Time, kind fx.WeatherKind, intensity float64) bool {
	intensity = easing.Clamp01(intensity)
	if kind == fx.WeatherClear {
		intensity = 0
	}
	if kind == e.kind {
		e.intensity = intensity
		e.resize(now)
		return false
	}

	if e.kind != fx.WeatherClear {
		e.pool.RemoveTag(Tag(e.kind))
	}
	e.kind = kind
	e.intensity = intensity
	e.since = now
	e.emitters = e.emitters[:0]
	e.resize(now)
	return true
}

// emitterTarget is the emitter count for the current kind, tier and intensity.
func (e *Engine) emitterTarget() int {
	if e.kind != fx.WeatherRain && e.kind != fx.WeatherSnow {
		return 0
	}
	if e.intensity <= 0 {
		return 0
	}
	var tier fx.Tier = fx.TierMedium
	if e.tiers != nil {
		tier = e.tiers.Tier()
	}
	n := int(math.Round(float64(e.limits.For(tier).WeatherEmitters) * e.intensity))
	return max(n, 1)
}

// resize grows or shrinks the emitter list to match the target count. New
// emitters fire after their own random delay.
func (e *Engine) resize(now time.Time) {
	target := e.emitterTarget()
	if len(e.emitters) > target {
		e.emitters = e.emitters[:target]
	}
	for len(e.emitters) < target {
		e.emitters = append(e.emitters, now.Add(e.delay()))
	}
}

// delay returns a random delay in (0, MaxEmitDelay].
func (e *Engine) delay() time.Duration {
	return time.Duration((1 - e.rng.Float64()) * float64(MaxEmitDelay))
}

// Update fires due emitters into the pool and returns the overlay command
// for fog and sandstorm.
func (e *Engine) Update(now time.Time) []fx.Command {
	switch e.kind {
	case fx.WeatherRain, fx.WeatherSnow:
		e.resize(now)
		for i, due := range e.emitters {
			if now.Before(due) {
				continue
			}
			if !e.muted {
				e.emit(now)
			}
			e.emitters[i] = now.Add(e.delay())
		}
		return nil
	case fx.WeatherFog, fx.WeatherSandstorm:
		return []fx.Command{e.overlay(now)}
	default:
		return nil
	}
}

func (e *Engine) emit(now time.Time) {
	x := e.rng.Float64() * e.viewport.X
	switch e.kind {
	case fx.WeatherRain:
		e.pool.Spawn(now, particle.Params{
			Position: fx.Vec2{X: x - e.viewport.X*0.1, Y: -2},
			Velocity: fx.Vec2{X: 0.6, Y: 3.5 + e.rng.Float64()*1.5},
			Rotation: 10,
			Opacity:  0.5 + 0.5*e.intensity,
			Duration: 1200 * time.Millisecond,
			Hint:     "rain",
			Tag:      Tag(fx.WeatherRain),
		})
	case fx.WeatherSnow:
		e.pool.Spawn(now, particle.Params{
			Position:      fx.Vec2{X: x, Y: -2},
			Velocity:      fx.Vec2{X: (e.rng.Float64() - 0.5) * 0.4, Y: 0.4 + e.rng.Float64()*0.3},
			RotationSpeed: 2,
			Scale:         0.6 + e.rng.Float64()*0.6,
			Fade:          true,
			Duration:      4 * time.Second,
			Hint:          "snow",
			Tag:           Tag(fx.WeatherSnow),
		})
	}
}

func (e *Engine) overlay(now time.Time) fx.Command {
	elapsed := now.Sub(e.since).Seconds()
	var ov fx.Overlay
	switch e.kind {
	case fx.WeatherFog:
		op := 0.2 + 0.5*e.intensity
		ov = fx.Overlay{
			Kind:     fx.WeatherFog,
			Opacity:  op,
			Color:    "#b0b8c0",
			Gradient: [2]float64{op, op * 0.5},
			Drift:    frac(elapsed * 0.02),
		}
	case fx.WeatherSandstorm:
		op := 0.25 + 0.45*e.intensity
		ov = fx.Overlay{
			Kind:     fx.WeatherSandstorm,
			Opacity:  op,
			Color:    "#c2a060",
			Gradient: [2]float64{op * 0.6, op},
			Drift:    frac(elapsed * (0.1 + 0.3*e.intensity)),
		}
	}
	return fx.Command{
		Source:    fx.SourceWeather,
		Transform: fx.Identity(),
		Overlay:   &ov,
	}
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
