package weather

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/particle"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
)

var t0 = time.Unix(1_700_000_000, 0)

type fixedTier fx.Tier

func (f *fixedTier) Tier() fx.Tier { return fx.Tier(*f) }

func newTestEngine(tier fx.Tier) (*Engine, *particle.Pool, *fixedTier) {
	pool := particle.NewPool(500, rand.New(rand.NewSource(1)))
	ft := fixedTier(tier)
	e := New(Options{
		Pool:     pool,
		Tiers:    &ft,
		Limits:   quality.DefaultTable,
		Viewport: fx.Vec2{X: 80, Y: 40},
		Rand:     rand.New(rand.NewSource(2)),
	})
	return e, pool, &ft
}

// run ticks the engine and pool at 60Hz for d.
func run(e *Engine, pool *particle.Pool, now time.Time, d time.Duration) (time.Time, []fx.Command) {
	var last []fx.Command
	end := now.Add(d)
	for now.Before(end) {
		now = now.Add(time.Second / 60)
		last = e.Update(now)
		pool.Update(now)
	}
	return now, last
}

func TestEngine_RainEmitsTaggedParticles(t *testing.T) {
	e, pool, _ := newTestEngine(fx.TierHigh)
	assert.True(t, e.SetWeather(t0, fx.WeatherRain, 1))
	assert.Equal(t, 40, e.Emitters())

	run(e, pool, t0, 4*time.Second)
	assert.Positive(t, pool.CountTag(Tag(fx.WeatherRain)))
	assert.Zero(t, pool.CountTag(Tag(fx.WeatherSnow)))
}

func TestEngine_MutedEmitsNothing(t *testing.T) {
	e, pool, _ := newTestEngine(fx.TierHigh)
	e.SetWeather(t0, fx.WeatherRain, 1)
	e.SetEmitting(false)

	now, _ := run(e, pool, t0, 4*time.Second)
	assert.Zero(t, pool.Len())
	assert.Equal(t, fx.WeatherRain, e.Kind())
	assert.Equal(t, 40, e.Emitters())

	e.SetEmitting(true)
	run(e, pool, now, 4*time.Second)
	assert.Positive(t, pool.CountTag(Tag(fx.WeatherRain)))
}

func TestEngine_SwitchRemovesPreviousKind(t *testing.T) {
	e, pool, _ := newTestEngine(fx.TierHigh)
	e.SetWeather(t0, fx.WeatherRain, 1)
	now, _ := run(e, pool, t0, 4*time.Second)
	require.Positive(t, pool.CountTag(Tag(fx.WeatherRain)))

	assert.True(t, e.SetWeather(now, fx.WeatherSnow, 1))
	assert.Zero(t, pool.CountTag(Tag(fx.WeatherRain)))

	run(e, pool, now, 4*time.Second)
	assert.Zero(t, pool.CountTag(Tag(fx.WeatherRain)))
	assert.Positive(t, pool.CountTag(Tag(fx.WeatherSnow)))
}

func TestEngine_SameKindUpdatesIntensity(t *testing.T) {
	e, _, _ := newTestEngine(fx.TierMedium)
	e.SetWeather(t0, fx.WeatherSnow, 1)
	assert.Equal(t, 20, e.Emitters())

	assert.False(t, e.SetWeather(t0, fx.WeatherSnow, 0.5))
	assert.Equal(t, 0.5, e.Intensity())
	assert.Equal(t, 10, e.Emitters())
}

func TestEngine_EmittersFollowTier(t *testing.T) {
	e, pool, tier := newTestEngine(fx.TierHigh)
	e.SetWeather(t0, fx.WeatherRain, 0.5)
	assert.Equal(t, 20, e.Emitters())

	*tier = fixedTier(fx.TierLow)
	run(e, pool, t0, time.Second/60)
	assert.Equal(t, 4, e.Emitters())
}

func TestEngine_LowIntensityKeepsOneEmitter(t *testing.T) {
	e, _, _ := newTestEngine(fx.TierLow)
	e.SetWeather(t0, fx.WeatherRain, 0.01)
	assert.Equal(t, 1, e.Emitters())
}

func TestEngine_IntensityClamped(t *testing.T) {
	e, _, _ := newTestEngine(fx.TierLow)
	e.SetWeather(t0, fx.WeatherFog, 7)
	assert.Equal(t, 1.0, e.Intensity())
	e.SetWeather(t0, fx.WeatherFog, -1)
	assert.Equal(t, 0.0, e.Intensity())
}

func TestEngine_FogOverlayEveryTick(t *testing.T) {
	e, pool, _ := newTestEngine(fx.TierMedium)
	e.SetWeather(t0, fx.WeatherFog, 0.5)

	_, cmds := run(e, pool, t0, time.Second)
	require.Len(t, cmds, 1)
	c := cmds[0]
	assert.Equal(t, fx.SourceWeather, c.Source)
	require.NotNil(t, c.Overlay)
	assert.Equal(t, fx.WeatherFog, c.Overlay.Kind)
	assert.InDelta(t, 0.45, c.Overlay.Opacity, 1e-9)
	assert.Zero(t, pool.Len())
}

func TestEngine_SandstormDrifts(t *testing.T) {
	e, pool, _ := newTestEngine(fx.TierMedium)
	e.SetWeather(t0, fx.WeatherSandstorm, 1)

	now, first := run(e, pool, t0, time.Second/60)
	_, second := run(e, pool, now, time.Second/2)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].Overlay.Drift, second[0].Overlay.Drift)
	assert.GreaterOrEqual(t, second[0].Overlay.Drift, 0.0)
	assert.Less(t, second[0].Overlay.Drift, 1.0)
}

func TestEngine_ClearStopsEverything(t *testing.T) {
	e, pool, _ := newTestEngine(fx.TierHigh)
	e.SetWeather(t0, fx.WeatherSnow, 1)
	now, _ := run(e, pool, t0, 4*time.Second)
	require.Positive(t, pool.Len())

	assert.True(t, e.SetWeather(now, fx.WeatherClear, 1))
	assert.Zero(t, pool.Len())
	assert.Zero(t, e.Emitters())
	assert.Zero(t, e.Intensity())
	_, cmds := run(e, pool, now, time.Second)
	assert.Empty(t, cmds)
	assert.Zero(t, pool.Len())
}

func TestEngine_DelayWithinBounds(t *testing.T) {
	e, _, _ := newTestEngine(fx.TierHigh)
	for i := 0; i < 1000; i++ {
		d := e.delay()
		assert.Positive(t, d)
		assert.LessOrEqual(t, d, MaxEmitDelay)
	}
}
