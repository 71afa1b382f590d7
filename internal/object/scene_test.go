package object

import (
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

func cmd(h fx.Handle, t fx.Transform) fx.Command {
	return fx.Command{Source: fx.SourceAnimation, Handle: h, Transform: t}
}

func translate(x, y float64) fx.Transform {
	t := fx.Identity()
	t.Translate = fx.Vec2{X: x, Y: y}
	return t
}

func newScene(t *testing.T) *Scene {
	t.Helper()
	s := NewScene(100, 60, nil)
	s.Add(Actor{Handle: "hero", Label: "Hero", Pos: fx.Vec2{X: 10, Y: 10}, Shape: Box(4, 4)})
	s.Add(Actor{Handle: "mill", Pos: fx.Vec2{X: 50, Y: 30}, Shape: House(8, 6, 3), Radius: 6})
	return s
}

func TestScene_AbsoluteMovesRestPosition(t *testing.T) {
	s := newScene(t)
	abs := fx.Identity()
	abs.Translate = fx.Vec2{X: 20, Y: 15}
	abs.Absolute = true

	s.Render(&fx.Frame{Seq: 1, Commands: []fx.Command{cmd("hero", abs)}})

	hero, ok := s.View().Actor("hero")
	require.True(t, ok)
	assert.Equal(t, fx.Vec2{X: 20, Y: 15}, hero.Pos)
	assert.False(t, hero.Transform.Absolute)

	a, ok := s.Actor("hero")
	require.True(t, ok)
	assert.Equal(t, fx.Vec2{X: 20, Y: 15}, a.Pos)
}

func TestScene_RelativeOffsetIsStickyAndComposes(t *testing.T) {
	s := newScene(t)

	pulse := fx.Identity()
	pulse.Scale = 1.1
	s.Render(&fx.Frame{Seq: 1, Commands: []fx.Command{
		cmd("mill", translate(1, 0)),
		cmd("mill", pulse),
	}})
	mill, _ := s.View().Actor("mill")
	assert.Equal(t, fx.Vec2{X: 51, Y: 30}, mill.Pos)
	assert.InDelta(t, 1.1, mill.Transform.Scale, 1e-9)

	// No command this frame: the offset stays.
	s.Render(&fx.Frame{Seq: 2})
	mill, _ = s.View().Actor("mill")
	assert.Equal(t, fx.Vec2{X: 51, Y: 30}, mill.Pos)

	// A new frame's first command replaces the offset.
	s.Render(&fx.Frame{Seq: 3, Commands: []fx.Command{cmd("mill", fx.Identity())}})
	mill, _ = s.View().Actor("mill")
	assert.Equal(t, fx.Vec2{X: 50, Y: 30}, mill.Pos)
	assert.InDelta(t, 1.0, mill.Transform.Scale, 1e-9)
}

func TestScene_UnknownHandleDroppedAndLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	s := NewScene(100, 60, logger)

	for seq := uint64(1); seq <= 3; seq++ {
		s.Render(&fx.Frame{Seq: seq, Commands: []fx.Command{cmd("ghost", fx.Identity())}})
	}

	assert.Equal(t, 3, s.View().Dropped)
	assert.Equal(t, 1, strings.Count(buf.String(), "dropping command"))
	assert.Contains(t, buf.String(), fx.ErrInvalidTarget.Error())
}

func TestScene_ParticlesOverlayAndShake(t *testing.T) {
	s := newScene(t)
	shake := translate(1.5, -0.5)
	s.Render(&fx.Frame{Seq: 1, Weather: fx.WeatherFog, Commands: []fx.Command{
		{Source: fx.SourceParticle, Handle: fx.ParticleHandle(1), Hint: "coin",
			Transform: fx.Transform{Translate: fx.Vec2{X: 3, Y: 4}, Absolute: true, Scale: 1, Opacity: 0.5}},
		{Source: fx.SourceShake, Handle: fx.ViewportHandle, Transform: shake},
		{Source: fx.SourceWeather, Overlay: &fx.Overlay{Kind: fx.WeatherFog, Opacity: 0.45, Gradient: [2]float64{0.45, 0.225}}},
	}})

	v := s.View()
	require.Len(t, v.Dots, 1)
	assert.Equal(t, "coin", v.Dots[0].Hint)
	assert.Equal(t, fx.Vec2{X: 3, Y: 4}, v.Dots[0].Pos)
	assert.Equal(t, shake, v.Shake)
	require.NotNil(t, v.Overlay)
	assert.Equal(t, fx.WeatherFog, v.Overlay.Kind)
	assert.Zero(t, v.Dropped)
}

func TestScene_RemoveAndReplace(t *testing.T) {
	s := newScene(t)
	assert.True(t, s.Remove("hero"))
	assert.False(t, s.Remove("hero"))

	s.Render(&fx.Frame{Seq: 1, Commands: []fx.Command{cmd("hero", fx.Identity())}})
	assert.Equal(t, 1, s.View().Dropped)
	_, ok := s.View().Actor("mill")
	assert.True(t, ok)

	s.Add(Actor{Handle: "mill", Pos: fx.Vec2{X: 1, Y: 1}, Shape: Diamond(2)})
	s.Render(&fx.Frame{Seq: 2})
	require.Len(t, s.View().Actors, 1)
	assert.Equal(t, fx.Vec2{X: 1, Y: 1}, s.View().Actors[0].Pos)
}

func TestScene_FramesSelectOutline(t *testing.T) {
	s := NewScene(100, 60, nil)
	frames := Figure(6)
	s.Add(Actor{Handle: "walker", Frames: frames})

	tr := fx.Identity()
	tr.Frame = 2
	s.Render(&fx.Frame{Seq: 1, Commands: []fx.Command{cmd("walker", tr)}})
	w, _ := s.View().Actor("walker")
	assert.Equal(t, frames[2], w.Outline)

	tr.Frame = 5
	s.Render(&fx.Frame{Seq: 2, Commands: []fx.Command{cmd("walker", tr)}})
	w, _ = s.View().Actor("walker")
	assert.Equal(t, frames[1], w.Outline)
}

func TestView_Pick(t *testing.T) {
	s := newScene(t)
	s.Render(&fx.Frame{Seq: 1})
	v := s.View()

	h, ok := v.Pick(51, 31)
	require.True(t, ok)
	assert.Equal(t, fx.Handle("mill"), h)

	h, ok = v.Pick(10, 11)
	require.True(t, ok)
	assert.Equal(t, fx.Handle("hero"), h)

	_, ok = v.Pick(90, 5)
	assert.False(t, ok)
}

func TestView_PickSkipsInvisible(t *testing.T) {
	s := newScene(t)
	hidden := fx.Identity()
	hidden.Opacity = 0.1
	s.Render(&fx.Frame{Seq: 1, Commands: []fx.Command{cmd("mill", hidden)}})

	_, ok := s.View().Pick(50, 30)
	assert.False(t, ok)
}

func TestView_DrawAndLabels(t *testing.T) {
	s := newScene(t)
	s.Render(&fx.Frame{Seq: 1, Commands: []fx.Command{
		{Source: fx.SourceParticle, Transform: fx.Transform{Translate: fx.Vec2{X: 80, Y: 50}, Absolute: true, Scale: 1, Opacity: 0.1}},
	}})

	c := draw.NewScaledCanvas(100, 30, 100, 60)
	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out, 0, 0)
	ctx := DrawContext{Canvas: c, Writer: cw}

	require.NoError(t, s.View().Draw(ctx))
	c.Render(cw)
	labels := s.View().Labels(c)
	require.Len(t, labels, 1)
	assert.Equal(t, "Hero", labels[0].Value)
	require.NoError(t, labels[0].Draw(ctx))
	require.NoError(t, cw.Flush())

	assert.Contains(t, out.String(), "Hero")
	assert.Contains(t, out.String(), string(draw.BlockFull))
	// The faint particle is hidden, so its cell is blank.
	col, row := c.LogicalToTerminal(80, 50)
	assert.NotContains(t, out.String(), "\033["+itoa(row)+";"+itoa(col)+"H▀")
}

func TestShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rock := Irregular(5, rng)
	assert.GreaterOrEqual(t, len(rock), 8)
	assert.LessOrEqual(t, len(rock), 12)

	assert.Len(t, Triangle(3, 0), 3)
	assert.Len(t, Box(2, 2), 4)
	assert.Len(t, House(4, 4, 2), 5)
	assert.Len(t, Figure(6), 4)

	a := Actor{Shape: Box(6, 8)}
	assert.InDelta(t, 5.0, a.radius(), 1e-9)
}

func TestActorState_Points(t *testing.T) {
	s := ActorState{
		Pos:       fx.Vec2{X: 10, Y: 10},
		Transform: fx.Transform{Scale: 2, Rotate: 90, Opacity: 1},
		Outline:   []draw.Point{{X: 1, Y: 0}},
	}
	p := s.Points()[0]
	assert.InDelta(t, 10.0, p.X, 1e-9)
	assert.InDelta(t, 12.0, p.Y, 1e-9)
}

func TestCentered(t *testing.T) {
	txt := Centered(20, 3, "abcd", "")
	assert.Equal(t, 9, txt.X)
	assert.Equal(t, 3, txt.Y)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
