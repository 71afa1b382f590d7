package client

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/input"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/object"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/quality"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/settings"
)

// fakeHost records posted triggers and serves a fixed scene.
type fakeHost struct {
	layout server.Layout
	scene  *object.Scene
	live   *settings.Live
	handle *server.ClientHandle
	posted []engine.Trigger
	gone   bool
}

func newFakeHost() *fakeHost {
	l := server.NewLayout(120, 80)
	h := &fakeHost{
		layout: l,
		scene:  object.NewScene(120, 80, nil),
		live:   settings.NewLive(fx.DefaultSettings()),
		handle: &server.ClientHandle{ID: uuid.New(), Username: "ann", Hero: "hero:ann", EventsCh: make(chan server.ClientEvent, 4)},
	}
	h.scene.Add(server.Hero(h.handle.Hero, "ann", fx.Vec2{X: 60, Y: 50}))
	h.scene.Render(&fx.Frame{Seq: 1})
	return h
}

func (h *fakeHost) RegisterClient(string) *server.ClientHandle { return h.handle }
func (h *fakeHost) UnregisterClient(uuid.UUID)                 { h.gone = true }
func (h *fakeHost) Post(_ uuid.UUID, t engine.Trigger) bool {
	h.posted = append(h.posted, t)
	return true
}
func (h *fakeHost) View() *object.View       { return h.scene.View() }
func (h *fakeHost) Layout() server.Layout    { return h.layout }
func (h *fakeHost) Settings() *settings.Live { return h.live }

func newTestClient(t *testing.T, keys string) (*Client, *fakeHost, *bytes.Buffer) {
	t.Helper()
	h := newFakeHost()
	var out bytes.Buffer
	c := NewClient(h, bufio.NewReader(strings.NewReader(keys)), &out, ClientOptions{
		Username:     "ann",
		TermSizeFunc: draw.FixedTermSize(100, 40),
	})
	return c, h, &out
}

func TestClient_MoveFromHeroPosition(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	c.state.Input = input.Input{Right: true, Weather: -1}
	now := time.Now()

	c.updateLive(now)
	// Held key inside the repeat window does not move again.
	c.updateLive(now.Add(moveRepeat / 2))

	require.Len(t, h.posted, 1)
	mv := h.posted[0]
	assert.Equal(t, engine.TriggerCharacterMove, mv.Kind)
	assert.Equal(t, fx.Handle("hero:ann"), mv.Target)
	assert.Equal(t, fx.Vec2{X: 60, Y: 50}, mv.From)
	assert.Equal(t, fx.Vec2{X: 60 + config.HeroStep, Y: 50}, mv.To)
	assert.Equal(t, engine.SpeedWalk, mv.Speed)

	c.act(input.ActionRun)
	c.updateLive(now.Add(moveRepeat))
	require.Len(t, h.posted, 2)
	assert.Equal(t, engine.SpeedRun, h.posted[1].Speed)
}

func TestClient_MoveClampsToViewport(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	h.scene.Add(server.Hero(h.handle.Hero, "ann", fx.Vec2{X: 117, Y: 2}))
	h.scene.Render(&fx.Frame{Seq: 2})

	c.move(fx.Vec2{X: 1, Y: -1})
	require.Len(t, h.posted, 1)
	assert.Equal(t, fx.Vec2{X: 116, Y: 4}, h.posted[0].To)
}

func TestClient_ActionsMapToTriggers(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	c.state.Input = input.Input{
		Actions: []input.Action{input.ActionGold, input.ActionSpend, input.ActionTradeFail, input.ActionShake},
		Weather: 2,
	}
	c.updateLive(time.Now())

	require.Len(t, h.posted, 5)
	assert.Equal(t, config.GoldAmount, h.posted[0].Amount)
	assert.Equal(t, fx.Vec2{X: 60, Y: 50}, h.posted[0].Origin)
	assert.Equal(t, -config.GoldAmount, h.posted[1].Amount)
	assert.Equal(t, engine.TriggerTradeComplete, h.posted[2].Kind)
	assert.False(t, h.posted[2].Success)
	assert.Equal(t, engine.TriggerScreenShake, h.posted[3].Kind)
	assert.Equal(t, engine.TriggerWeatherChange, h.posted[4].Kind)
	assert.Equal(t, fx.WeatherSnow, h.posted[4].Weather)
}

func TestClient_BuildingActionsTargetNearest(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	// Hero at (60, 50) is closest to the quarry at (60, 44).
	c.act(input.ActionUpgrade)
	require.Len(t, h.posted, 1)
	assert.Equal(t, server.HandleQuarry, h.posted[0].Target)
	assert.Equal(t, "upgrade", h.posted[0].Action)
}

func TestClient_TravelToggles(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	c.act(input.ActionTravel)
	c.act(input.ActionTravel)

	require.Len(t, h.posted, 2)
	assert.Equal(t, engine.TriggerTravelStart, h.posted[0].Kind)
	assert.Equal(t, h.layout.CaravanTo, h.posted[0].To)
	assert.Equal(t, engine.TriggerTravelComplete, h.posted[1].Kind)
}

func TestClient_SettingsToggles(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	var saved []fx.Settings
	c.onSettings = func(s fx.Settings) { saved = append(saved, s) }

	c.act(input.ActionToggleParticles)
	c.act(input.ActionCycleQuality)

	s := h.live.Settings()
	assert.False(t, s.ParticlesEnabled)
	assert.Equal(t, fx.QualityLow, s.Quality)
	require.Len(t, saved, 2)
	assert.Equal(t, s, saved[1])
	assert.Empty(t, h.posted)
}

func TestClient_ServerEvents(t *testing.T) {
	c, h, _ := newTestClient(t, "")
	h.handle.EventsCh <- server.ClientEvent{Type: server.EventTierChanged, Tier: quality.Change{From: fx.TierHigh, To: fx.TierMedium, FPS: 24}}
	c.processServerEvents()
	assert.Equal(t, "quality high -> medium (24 fps)", c.state.Notice())

	h.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}
	c.processServerEvents()
	assert.Equal(t, ScreenShutdown, c.state.Screen)

	close(h.handle.EventsCh)
	c.processServerEvents()
	assert.False(t, c.state.Running)
}

func TestClient_DrawFrameShowsHUD(t *testing.T) {
	c, _, out := newTestClient(t, "")
	c.state.Screen = ScreenLive

	require.NoError(t, c.drawFrame())
	s := out.String()
	assert.Contains(t, s, "Tier: low")
	assert.Contains(t, s, "Weather: clear")
	assert.Contains(t, s, "[ZNRY-] q:auto")
	assert.Contains(t, s, "ann")
}

func TestClient_RunQuitsOnClosedInput(t *testing.T) {
	c, h, out := newTestClient(t, "")

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
	}
	assert.True(t, h.gone)
	assert.Contains(t, out.String(), "\033[?25h")
}

func TestClampTermSize(t *testing.T) {
	w, h, oc, or := clampTermSize(300, 100)
	assert.Equal(t, config.MaxTermWidth, w)
	assert.Equal(t, config.MaxTermHeight, h)
	assert.Equal(t, 30, oc)
	assert.Equal(t, 10, or)
}
