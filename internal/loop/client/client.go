// Package client renders the shared effects scene to one terminal and turns
// that terminal's key presses into engine triggers.
package client

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/input"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/physics"
)

// moveRepeat is the minimum gap between moves while a direction is held.
const moveRepeat = 150 * time.Millisecond

// Client handles rendering and input for a single connection.
type Client struct {
	host         server.Host
	handle       *server.ClientHandle
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	onSettings   func(fx.Settings)
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	// OnSettings is called after this client changes a setting.
	OnSettings func(fx.Settings)
	Logger     *log.Logger
}

// NewClient creates a new client connected to the given host.
func NewClient(h server.Host, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	handle := h.RegisterClient(opts.Username)
	state := NewClientState()
	state.termSizeFunc = termSizeFunc

	// Create canvas with clamped dimensions for max render resolution
	layout := h.Layout()
	termWidth, termHeight, err := termSizeFunc()
	if err != nil {
		termWidth, termHeight = 80, 24
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, layout.Width, layout.Height)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		host:         h,
		handle:       handle,
		state:        state,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
		onSettings:   opts.OnSettings,
		logger:       logger.With("client", handle.ID.String()[:8]),
	}
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.processServerEvents()
		c.updateScreen()

		if c.state.Screen == ScreenStart && (c.state.Input.Space || c.state.Input.Enter) {
			c.state.Screen = ScreenLive
		}
		switch c.state.Screen {
		case ScreenLive:
			c.updateLive(frameStart)
		case ScreenShutdown:
			c.updateShutdown()
		}

		if err := c.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.host.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and tracks inactivity.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	idle := time.Since(c.lastInput).Seconds()
	switch {
	case c.state.Input.Any():
		c.lastInput = time.Now()
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	if c.state.Input.Quit {
		c.state.Running = false
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				c.state.Screen = ScreenShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			case server.EventTierChanged:
				ch := event.Tier
				c.state.setNotice(fmt.Sprintf("quality %s -> %s (%.0f fps)", ch.From, ch.To, ch.FPS), 3*time.Second)
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateLive turns this frame's input into triggers.
func (c *Client) updateLive(now time.Time) {
	in := c.state.Input

	var dir fx.Vec2
	if in.Left {
		dir.X--
	}
	if in.Right {
		dir.X++
	}
	if in.Up {
		dir.Y--
	}
	if in.Down {
		dir.Y++
	}
	if dir != (fx.Vec2{}) && now.Sub(c.state.lastMove) >= moveRepeat {
		c.state.lastMove = now
		c.move(dir)
	}

	for _, a := range in.Actions {
		c.act(a)
	}
	if in.Weather >= 0 {
		c.post(engine.Trigger{Kind: engine.TriggerWeatherChange, Weather: fx.WeatherKind(in.Weather), Intensity: 0.7})
	}
}

// heroPos returns the hero's position in the latest view, falling back to
// the viewport centre before the hero has spawned.
func (c *Client) heroPos() (fx.Vec2, bool) {
	if a, ok := c.host.View().Actor(c.handle.Hero); ok {
		return a.Pos, true
	}
	l := c.host.Layout()
	return fx.Vec2{X: l.Width / 2, Y: l.Height / 2}, false
}

// move walks the hero one step in dir, staying inside the viewport.
func (c *Client) move(dir fx.Vec2) {
	from, ok := c.heroPos()
	if !ok {
		return
	}
	l := c.host.Layout()
	to := from.Add(dir.Scale(config.HeroStep))
	to.X = min(max(to.X, 4), l.Width-4)
	to.Y = min(max(to.Y, 4), l.Height-4)

	speed := engine.SpeedWalk
	if c.state.Run {
		speed = engine.SpeedRun
	}
	c.post(engine.Trigger{Kind: engine.TriggerCharacterMove, Target: c.handle.Hero, From: from, To: to, Speed: speed})
}

// nearestBuilding returns the building closest to the hero.
func (c *Client) nearestBuilding(hero fx.Vec2) (fx.Handle, fx.Vec2) {
	l := c.host.Layout()
	handles := []fx.Handle{server.HandleMarket, server.HandleMill, server.HandleQuarry}
	positions := []fx.Vec2{l.Market, l.Mill, l.Quarry}
	i := physics.Nearest(hero, positions)
	return handles[i], positions[i]
}

// act maps a one-shot action onto a trigger or a settings change.
func (c *Client) act(a input.Action) {
	hero, _ := c.heroPos()
	building, buildingPos := c.nearestBuilding(hero)
	l := c.host.Layout()

	switch a {
	case input.ActionGold:
		c.post(engine.Trigger{Kind: engine.TriggerGoldTransaction, Origin: hero, Amount: config.GoldAmount})
	case input.ActionSpend:
		c.post(engine.Trigger{Kind: engine.TriggerGoldTransaction, Origin: hero, Amount: -config.GoldAmount})
	case input.ActionLevelUp:
		c.post(engine.Trigger{Kind: engine.TriggerLevelUp, Origin: hero})
	case input.ActionTrade, input.ActionTradeFail:
		c.post(engine.Trigger{Kind: engine.TriggerTradeComplete, Origin: l.Market, Success: a == input.ActionTrade})
	case input.ActionBuild:
		c.post(engine.Trigger{Kind: engine.TriggerBuildingAction, Target: building, Action: "construction", Level: 1})
	case input.ActionUpgrade:
		c.post(engine.Trigger{Kind: engine.TriggerBuildingAction, Target: building, Action: "upgrade", Level: 2})
	case input.ActionDamage:
		c.post(engine.Trigger{Kind: engine.TriggerBuildingAction, Target: building, Action: "damage"})
	case input.ActionDestroy:
		c.post(engine.Trigger{Kind: engine.TriggerBuildingAction, Target: building, Action: "destroy"})
	case input.ActionTravel:
		if c.state.Traveling {
			c.post(engine.Trigger{Kind: engine.TriggerTravelComplete, Target: server.HandleCaravan})
		} else {
			c.post(engine.Trigger{Kind: engine.TriggerTravelStart, Target: server.HandleCaravan, From: l.CaravanFrom, To: l.CaravanTo})
		}
		c.state.Traveling = !c.state.Traveling
	case input.ActionProjectile:
		c.post(engine.Trigger{Kind: engine.TriggerProjectile, From: hero, To: buildingPos})
	case input.ActionShake:
		c.post(engine.Trigger{Kind: engine.TriggerScreenShake, Intensity: 3, DurationMS: 400})
	case input.ActionItemUse:
		c.post(engine.Trigger{Kind: engine.TriggerItemUse, Target: c.handle.Hero, Item: "potion"})
	case input.ActionRun:
		c.state.Run = !c.state.Run
		if c.state.Run {
			c.state.setNotice("running", time.Second)
		} else {
			c.state.setNotice("walking", time.Second)
		}
	case input.ActionToggleParticles, input.ActionToggleAnimations, input.ActionToggleShake,
		input.ActionToggleWeather, input.ActionToggleReducedMotion, input.ActionCycleQuality:
		c.toggle(a)
	}
}

// toggle applies a settings action to the live settings.
func (c *Client) toggle(a input.Action) {
	live := c.host.Settings()
	if live == nil {
		return
	}
	s := live.Update(func(s *fx.Settings) {
		switch a {
		case input.ActionToggleParticles:
			s.ParticlesEnabled = !s.ParticlesEnabled
		case input.ActionToggleAnimations:
			s.AnimationsEnabled = !s.AnimationsEnabled
		case input.ActionToggleShake:
			s.ScreenShakeEnabled = !s.ScreenShakeEnabled
		case input.ActionToggleWeather:
			s.WeatherEffectsEnabled = !s.WeatherEffectsEnabled
		case input.ActionToggleReducedMotion:
			s.ReducedMotion = !s.ReducedMotion
		case input.ActionCycleQuality:
			s.Quality = nextQuality(s.Quality)
		}
	})
	c.logger.Debug("settings changed", "action", a, "settings", s)
	c.state.setNotice(a.String(), time.Second)
	if c.onSettings != nil {
		c.onSettings(s)
	}
}

func nextQuality(m fx.QualityMode) fx.QualityMode {
	switch m {
	case fx.QualityAuto:
		return fx.QualityLow
	case fx.QualityLow:
		return fx.QualityMedium
	case fx.QualityMedium:
		return fx.QualityHigh
	default:
		return fx.QualityAuto
	}
}

func (c *Client) post(t engine.Trigger) {
	if !c.host.Post(c.handle.ID, t) {
		c.logger.Debug("trigger dropped", "kind", t.Kind)
	}
}

// updateShutdown handles the shutdown screen countdown.
func (c *Client) updateShutdown() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
