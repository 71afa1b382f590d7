package shake

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

var t0 = time.Unix(1_700_000_000, 0)

func TestController_FirstWins(t *testing.T) {
	c := NewController(rand.New(rand.NewSource(1)))
	assert.True(t, c.Trigger(t0, 10, time.Second))
	assert.False(t, c.Trigger(t0.Add(10*time.Millisecond), 50, 5*time.Second))

	// still bounded by the first trigger's intensity
	cmd, ok := c.Update(t0.Add(100 * time.Millisecond))
	require.True(t, ok)
	assert.LessOrEqual(t, math.Abs(cmd.Transform.Translate.X), 10.0)

	// and ends on the first trigger's schedule
	_, ok = c.Update(t0.Add(time.Second))
	assert.True(t, ok)
	assert.False(t, c.Active())
}

func TestController_DecayIsBounded(t *testing.T) {
	c := NewController(rand.New(rand.NewSource(3)))
	base := fx.Identity()
	base.Translate = fx.Vec2{X: 5, Y: -2}
	c.SetBase(base)
	require.True(t, c.Trigger(t0, 8, time.Second))

	for ms := 0; ms < 1000; ms += 16 {
		cmd, ok := c.Update(t0.Add(time.Duration(ms) * time.Millisecond))
		require.True(t, ok)
		bound := 8 * (1 - float64(ms)/1000)
		assert.Equal(t, fx.ViewportHandle, cmd.Handle)
		assert.LessOrEqual(t, math.Abs(cmd.Transform.Translate.X-5), bound+1e-9)
		assert.LessOrEqual(t, math.Abs(cmd.Transform.Translate.Y+2), bound+1e-9)
		assert.LessOrEqual(t, math.Abs(cmd.Transform.Rotate), bound*rotationFactor+1e-9)
	}
}

func TestController_AverageMagnitudeShrinks(t *testing.T) {
	avg := func(progress float64) float64 {
		var sum float64
		for seed := int64(0); seed < 200; seed++ {
			c := NewController(rand.New(rand.NewSource(seed)))
			c.Trigger(t0, 10, time.Second)
			cmd, _ := c.Update(t0.Add(time.Duration(progress * float64(time.Second))))
			sum += cmd.Transform.Translate.Len()
		}
		return sum / 200
	}
	early, mid, late := avg(0.1), avg(0.5), avg(0.9)
	assert.Greater(t, early, mid)
	assert.Greater(t, mid, late)
}

func TestController_RestoresBaseExactly(t *testing.T) {
	c := NewController(rand.New(rand.NewSource(5)))
	base := fx.Transform{Translate: fx.Vec2{X: 1.5, Y: 2.5}, Scale: 1.2, Rotate: 3, Opacity: 1}
	c.SetBase(base)
	c.Trigger(t0, 20, 300*time.Millisecond)

	c.Update(t0.Add(100 * time.Millisecond))
	cmd, ok := c.Update(t0.Add(400 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, base, cmd.Transform)
	assert.False(t, c.Active())

	_, ok = c.Update(t0.Add(500 * time.Millisecond))
	assert.False(t, ok)

	// a new shake is accepted once the previous one has finished
	assert.True(t, c.Trigger(t0.Add(500*time.Millisecond), 4, time.Second))
}

func TestController_StopRestoresBaseOnce(t *testing.T) {
	c := NewController(rand.New(rand.NewSource(6)))
	base := fx.Identity()
	base.Translate = fx.Vec2{X: 3, Y: 4}
	c.SetBase(base)
	c.Trigger(t0, 20, time.Second)
	c.Update(t0.Add(100 * time.Millisecond))

	c.Stop()
	assert.False(t, c.Active())
	cmd, ok := c.Update(t0.Add(116 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, fx.ViewportHandle, cmd.Handle)
	assert.Equal(t, base, cmd.Transform)

	_, ok = c.Update(t0.Add(132 * time.Millisecond))
	assert.False(t, ok)

	// stopping an idle controller emits nothing
	c.Stop()
	_, ok = c.Update(t0.Add(148 * time.Millisecond))
	assert.False(t, ok)
}

func TestController_RejectsInvalid(t *testing.T) {
	c := NewController(nil)
	assert.False(t, c.Trigger(t0, 0, time.Second))
	assert.False(t, c.Trigger(t0, 5, -time.Second))
	assert.False(t, c.Active())

	assert.True(t, c.Trigger(t0, 5, 0))
	cmd, ok := c.Update(t0)
	assert.True(t, ok)
	assert.Equal(t, fx.Identity(), cmd.Transform)
}
