// Package engine ties the effect components together behind one frame
// driven scheduler.
//
// An Engine is not safe for concurrent use except through Post, Snapshot
// and Stats. Hosts that trigger effects from several goroutines post
// Trigger values; the mailbox is drained at the start of the next Tick.
package engine

import (
	"io"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/anim"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/clock"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/particle"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/shake"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/weather"
)

// DefaultMailboxSize is the trigger queue length used when Options leaves it zero.
const DefaultMailboxSize = 256

// Renderer receives every frame the engine produces. It is called on the
// tick goroutine and must not retain the frame's command slice past the call
// unless it treats it as read-only.
type Renderer interface {
	Render(*fx.Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(*fx.Frame)

func (f RendererFunc) Render(fr *fx.Frame) { f(fr) }

// SettingsSource supplies the user's effect settings. It is read once per
// tick and once per synchronous Dispatch.
type SettingsSource interface {
	Settings() fx.Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings fx.Settings

func (s StaticSettings) Settings() fx.Settings { return fx.Settings(s) }

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Clock    clock.Clock
	Settings SettingsSource
	Renderer Renderer
	Logger   *log.Logger
	Rand     *rand.Rand
	Limits   quality.Table
	// Quality tunes the adaptive controller. The starting tier is always
	// the settings' LastTier.
	Quality       quality.Options
	MaxAnimations int
	Viewport      fx.Vec2
	MailboxSize   int
	// OnTierChange is called on the tick goroutine after the quality tier
	// changes, measured or pinned.
	OnTierChange func(quality.Change)
}

// Stats are cumulative counters, published once per tick.
type Stats struct {
	Ticks              uint64
	ParticleEvictions  int
	AnimationEvictions int
	UnknownKinds       int
	DisabledTriggers   uint64
	DroppedPosts       uint64
}

// Engine is the effect scheduler.
type Engine struct {
	id       uuid.UUID
	clock    clock.Clock
	settings SettingsSource
	renderer Renderer
	log      *log.Logger
	limits   quality.Table
	viewport fx.Vec2

	particles *particle.Pool
	anims     *anim.Registry
	shake     *shake.Controller
	weather   *weather.Engine
	quality   *quality.Controller

	onTierChange func(quality.Change)

	mailbox chan Trigger
	cur     fx.Settings
	seq     uint64
	ticks   uint64
	last    time.Time // now of the latest Tick

	disabled atomic.Uint64
	dropped  atomic.Uint64
	frame    atomic.Pointer[fx.Frame]
	stats    atomic.Pointer[Stats]
}

// New creates an engine with empty state.
func New(opts Options) *Engine {
	id := uuid.New()

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("engine", id.String()[:8])

	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	src := opts.Settings
	if src == nil {
		src = StaticSettings(fx.DefaultSettings())
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	limits := opts.Limits
	if limits == (quality.Table{}) {
		limits = quality.DefaultTable
	}
	mailbox := opts.MailboxSize
	if mailbox <= 0 {
		mailbox = DefaultMailboxSize
	}

	cur := src.Settings()
	qopts := opts.Quality
	qopts.Initial = cur.LastTier
	q := quality.NewController(qopts)

	pool := particle.NewPool(limits.For(q.Tier()).MaxParticles, rand.New(rand.NewSource(rng.Int63())))
	e := &Engine{
		id:        id,
		clock:     clk,
		settings:  src,
		renderer:  opts.Renderer,
		log:       logger,
		limits:    limits,
		viewport:  opts.Viewport,
		particles: pool,
		anims: anim.NewRegistry(anim.Options{
			MaxEntries: opts.MaxAnimations,
			Logger:     logger,
		}),
		shake: shake.NewController(rand.New(rand.NewSource(rng.Int63()))),
		weather: weather.New(weather.Options{
			Pool:     pool,
			Tiers:    q,
			Limits:   limits,
			Viewport: opts.Viewport,
			Rand:     rand.New(rand.NewSource(rng.Int63())),
		}),
		quality:      q,
		onTierChange: opts.OnTierChange,
		mailbox:      make(chan Trigger, mailbox),
		cur:          cur,
	}
	e.stats.Store(&Stats{})
	e.applySettings(clk.Now(), cur)
	return e
}

// ID returns the engine's instance id.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Tier returns the current quality tier.
func (e *Engine) Tier() fx.Tier {
	return e.quality.Tier()
}

// Weather returns the current weather kind and intensity.
func (e *Engine) Weather() (fx.WeatherKind, float64) {
	return e.weather.Kind(), e.weather.Intensity()
}

// Viewport returns the configured viewport size.
func (e *Engine) Viewport() fx.Vec2 {
	return e.viewport
}

// Step runs Tick at the engine clock's current time.
func (e *Engine) Step() *fx.Frame {
	return e.Tick(e.clock.Now())
}

// Tick advances every component to now and returns the frame handed to the
// renderer. Settings are read and queued triggers applied first, in the
// order they were posted, then quality, particles, animations, shake and
// weather run. now is the time base for everything started afterwards by
// Dispatch and Animate, so hosts driving Tick with their own times stay
// consistent.
func (e *Engine) Tick(now time.Time) *fx.Frame {
	e.last = now
	e.applySettings(now, e.settings.Settings())
	e.drain(now)

	if ch, ok := e.quality.Sample(now); ok {
		e.tierChanged(ch)
	}
	limits := e.limits.For(e.quality.Tier())

	e.particles.SetCapacity(limits.MaxParticles)
	cmds := e.particles.Update(now)
	cmds = append(cmds, e.anims.Update(now)...)
	if c, ok := e.shake.Update(now); ok {
		cmds = append(cmds, c)
	}
	cmds = append(cmds, e.weather.Update(now)...)

	e.seq++
	e.ticks++
	frame := &fx.Frame{
		Seq:        e.seq,
		At:         now,
		Tier:       e.quality.Tier(),
		FPS:        e.quality.FPS(),
		Weather:    e.weather.Kind(),
		Particles:  e.particles.Len(),
		Animations: e.anims.Len(),
		Commands:   cmds,
	}
	if e.renderer != nil {
		e.renderer.Render(frame)
	}
	e.frame.Store(frame)
	e.stats.Store(&Stats{
		Ticks:              e.ticks,
		ParticleEvictions:  e.particles.Evictions(),
		AnimationEvictions: e.anims.Evictions(),
		UnknownKinds:       e.anims.UnknownKinds(),
		DisabledTriggers:   e.disabled.Load(),
		DroppedPosts:       e.dropped.Load(),
	})
	return frame
}

// now is the time base for direct calls: the latest tick time, or the
// clock before the first tick.
func (e *Engine) now() time.Time {
	if e.last.IsZero() {
		return e.clock.Now()
	}
	return e.last
}

// Snapshot returns the most recent frame, or nil before the first tick.
// Safe for concurrent use.
func (e *Engine) Snapshot() *fx.Frame {
	return e.frame.Load()
}

// Stats returns the counters as of the last tick. Safe for concurrent use.
func (e *Engine) Stats() Stats {
	return *e.stats.Load()
}

// applySettings pushes the settings into the components. Turning a feature
// off stops what it owns immediately.
func (e *Engine) applySettings(now time.Time, s fx.Settings) {
	prev := e.cur
	e.cur = s

	e.anims.SetEnabled(s.AnimationsEnabled)
	e.anims.SetReducedMotion(s.ReducedMotion)

	e.weather.SetEmitting(s.ParticlesEnabled)
	if !s.ParticlesEnabled && e.particles.Len()+e.particles.Pending() > 0 {
		e.particles.Clear()
	}
	if !s.ScreenShakeEnabled && e.shake.Active() {
		e.shake.Stop()
	}
	if !s.WeatherEffectsEnabled && e.weather.Kind() != fx.WeatherClear {
		e.weather.SetWeather(now, fx.WeatherClear, 0)
	}

	if tier, ok := s.Quality.Pinned(); ok {
		if ch, changed := e.quality.Pin(tier); changed {
			e.tierChanged(ch)
		}
	} else if e.quality.Pinned() {
		e.quality.Unpin()
	}

	if prev != s {
		e.log.Debug("settings applied",
			"quality", s.Quality,
			"animations", s.AnimationsEnabled,
			"particles", s.ParticlesEnabled,
			"shake", s.ScreenShakeEnabled,
			"weather", s.WeatherEffectsEnabled,
			"reduced_motion", s.ReducedMotion,
		)
	}
}

func (e *Engine) tierChanged(ch quality.Change) {
	e.log.Info("quality tier changed", "from", ch.From, "to", ch.To, "fps", ch.FPS)
	if e.onTierChange != nil {
		e.onTierChange(ch)
	}
}

func (e *Engine) drain(now time.Time) {
	for {
		select {
		case t := <-e.mailbox:
			e.dispatch(now, t)
		default:
			return
		}
	}
}
