package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

func TestDistanceDuration_Clamped(t *testing.T) {
	tests := []struct {
		name     string
		from, to fx.Vec2
		want     time.Duration
	}{
		{"scaled", fx.Vec2{}, fx.Vec2{X: 10}, 400 * time.Millisecond},
		{"short", fx.Vec2{}, fx.Vec2{X: 1}, minMove},
		{"far", fx.Vec2{X: -1e15}, fx.Vec2{X: 1e15}, maxMove},
		{"infinite", fx.Vec2{X: -1e200}, fx.Vec2{X: 1e200}, maxMove},
		{"nan", fx.Vec2{X: math.NaN()}, fx.Vec2{}, minMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := distanceDuration(tt.from, tt.to, walkPerUnit, minMove, maxMove)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_FarMoveKeepsMaxDuration(t *testing.T) {
	e, clk, _ := newTestEngine(t, nil)
	e.CharacterMove("hero", fx.Vec2{}, fx.Vec2{X: 1e18}, SpeedRun)

	frame := e.Tick(clk.Advance(time.Second))
	cmds := animationsFor(frame.Commands, "hero")
	require.Len(t, cmds, 1)
	assert.InDelta(t, 0.5e18, cmds[0].Transform.Translate.X, 1e6)
}

func TestEngine_FarProjectileHasBoundedLifetime(t *testing.T) {
	e, clk, _ := newTestEngine(t, nil)
	e.Projectile(fx.Vec2{}, fx.Vec2{X: 1e18})
	e.Tick(clk.Advance(time.Millisecond))

	ps := e.particles.Snapshot()
	require.Len(t, ps, 1)
	assert.Equal(t, maxProjectile, ps[0].Duration)

	e.Tick(clk.Advance(maxProjectile))
	assert.Zero(t, e.particles.Len())
}

func TestEngine_DispatchUsesTickTimeBase(t *testing.T) {
	e, clk, _ := newTestEngine(t, nil)
	// the host drives Tick an hour ahead of the injected clock
	host := clk.Now().Add(time.Hour)
	e.Tick(host)

	e.CharacterMove("hero", fx.Vec2{}, fx.Vec2{X: 10}, SpeedWalk)
	frame := e.Tick(host.Add(200 * time.Millisecond))
	cmds := animationsFor(frame.Commands, "hero")
	require.Len(t, cmds, 1)
	assert.InDelta(t, 5, cmds[0].Transform.Translate.X, 1e-9)
	assert.Equal(t, 1, e.anims.Len())
}
