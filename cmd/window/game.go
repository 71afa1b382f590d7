package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/engine"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/input"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/config"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/loop/server"
)

var (
	colBackground = color.RGBA{0x10, 0x13, 0x1a, 0xff}
	colOutline    = color.RGBA{0xc8, 0xcd, 0xd8, 0xff}
	colHero       = color.RGBA{0x5e, 0xe6, 0xff, 0xff}
	colLabel      = color.RGBA{0x8a, 0x93, 0xa6, 0xff}
)

var hintColors = map[string]color.RGBA{
	"coin":       {0xf2, 0xc9, 0x4c, 0xff},
	"coin-loss":  {0xd9, 0x6c, 0x4c, 0xff},
	"star":       {0xff, 0xf3, 0xb0, 0xff},
	"sparkle":    {0xc9, 0xf2, 0xff, 0xff},
	"smoke":      {0x8a, 0x8f, 0x99, 0xff},
	"projectile": {0xe0, 0xe0, 0xe0, 0xff},
	"rain":       {0x6f, 0xa8, 0xff, 0xff},
	"snow":       {0xee, 0xf4, 0xff, 0xff},
}

var buildings = map[fx.Handle]bool{
	server.HandleMarket: true,
	server.HandleMill:   true,
	server.HandleQuarry: true,
}

type game struct {
	srv        *server.Server
	me         *server.ClientHandle
	onSettings func(fx.Settings)
	logger     *log.Logger

	chars       []rune
	run         bool
	traveling   bool
	notice      string
	noticeUntil time.Time
}

func newGame(srv *server.Server, username string, onSettings func(fx.Settings), logger *log.Logger) *game {
	g := &game{
		srv:        srv,
		onSettings: onSettings,
		logger:     logger,
	}
	g.me = srv.RegisterClient(username)
	return g
}

// Update runs once per engine frame: input first, then one engine step so
// triggers dispatched here show up in the same frame.
func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.drainEvents()

	if _, ok := g.srv.View().Actor(g.me.Hero); ok {
		g.handleKeys()
		g.handleMouse()
	}

	g.srv.Step()
	return nil
}

func (g *game) drainEvents() {
	for {
		select {
		case ev, ok := <-g.me.EventsCh:
			if !ok {
				return
			}
			if ev.Type == server.EventTierChanged {
				g.setNotice(fmt.Sprintf("quality %s -> %s (%.0f fps)", ev.Tier.From, ev.Tier.To, ev.Tier.FPS))
			}
		default:
			return
		}
	}
}

func (g *game) setNotice(s string) {
	g.notice = s
	g.noticeUntil = time.Now().Add(2 * time.Second)
}

func (g *game) handleKeys() {
	e := g.srv.Engine()

	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		if r >= '0' && r <= '4' {
			e.WeatherChange(fx.WeatherKind(r-'0'), 0.7)
			continue
		}
		if r > 127 {
			continue
		}
		if a, ok := input.ForKey(byte(r)); ok {
			g.act(a)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.act(input.ActionRun)
	}

	var dir fx.Vec2
	for key, d := range map[ebiten.Key]fx.Vec2{
		ebiten.KeyArrowLeft:  {X: -1},
		ebiten.KeyArrowRight: {X: 1},
		ebiten.KeyArrowUp:    {Y: -1},
		ebiten.KeyArrowDown:  {Y: 1},
	} {
		if inpututil.IsKeyJustPressed(key) {
			dir = dir.Add(d)
		}
	}
	if dir != (fx.Vec2{}) {
		hero := g.heroPos()
		g.moveTo(hero.Add(dir.Scale(config.HeroStep)))
	}
}

// handleMouse upgrades a clicked building or walks the hero to the cursor.
func (g *game) handleMouse() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx)/pixelsPerUnit, float64(cy)/pixelsPerUnit

	if h, ok := g.srv.View().Pick(x, y); ok && buildings[h] {
		g.srv.Engine().BuildingAction(h, "upgrade", 2)
		return
	}
	g.moveTo(fx.Vec2{X: x, Y: y})
}

func (g *game) heroPos() fx.Vec2 {
	a, _ := g.srv.View().Actor(g.me.Hero)
	return a.Pos
}

func (g *game) moveTo(to fx.Vec2) {
	l := g.srv.Layout()
	to.X = min(max(to.X, 4), l.Width-4)
	to.Y = min(max(to.Y, 4), l.Height-4)
	speed := engine.SpeedWalk
	if g.run {
		speed = engine.SpeedRun
	}
	g.srv.Engine().CharacterMove(g.me.Hero, g.heroPos(), to, speed)
}

func (g *game) act(a input.Action) {
	e := g.srv.Engine()
	l := g.srv.Layout()
	hero := g.heroPos()

	switch a {
	case input.ActionGold:
		e.GoldTransaction(hero, config.GoldAmount)
	case input.ActionSpend:
		e.GoldTransaction(hero, -config.GoldAmount)
	case input.ActionLevelUp:
		e.LevelUp(hero)
	case input.ActionTrade, input.ActionTradeFail:
		e.TradeComplete(l.Market, a == input.ActionTrade)
	case input.ActionBuild:
		e.BuildingAction(server.HandleQuarry, "construction", 1)
	case input.ActionUpgrade:
		e.BuildingAction(server.HandleMill, "upgrade", 2)
	case input.ActionDamage:
		e.BuildingAction(server.HandleMarket, "damage", 1)
	case input.ActionDestroy:
		e.BuildingAction(server.HandleQuarry, "destroy", 1)
	case input.ActionTravel:
		if g.traveling {
			e.TravelComplete(server.HandleCaravan)
		} else {
			e.TravelStart(server.HandleCaravan, l.CaravanFrom, l.CaravanTo)
		}
		g.traveling = !g.traveling
	case input.ActionProjectile:
		e.Projectile(hero, l.Mill)
	case input.ActionShake:
		e.ScreenShake(3, 400*time.Millisecond)
	case input.ActionItemUse:
		e.ItemUse(g.me.Hero, "potion")
	case input.ActionRun:
		g.run = !g.run
	default:
		g.toggle(a)
	}
}

func (g *game) toggle(a input.Action) {
	live := g.srv.Settings()
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
			switch s.Quality {
			case fx.QualityAuto:
				s.Quality = fx.QualityLow
			case fx.QualityLow:
				s.Quality = fx.QualityMedium
			case fx.QualityMedium:
				s.Quality = fx.QualityHigh
			default:
				s.Quality = fx.QualityAuto
			}
		}
	})
	g.setNotice(a.String())
	if g.onSettings != nil {
		g.onSettings(s)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	v := g.srv.View()
	sx, sy := float32(v.Shake.Translate.X*pixelsPerUnit), float32(v.Shake.Translate.Y*pixelsPerUnit)

	for _, a := range v.Actors {
		if !a.Visible() {
			continue
		}
		col := colOutline
		if a.Handle == g.me.Hero {
			col = colHero
		} else if c, ok := hintColors[a.Hint]; ok {
			col = c
		}
		col = fade(col, a.Transform.Opacity)

		pts := a.Points()
		if len(pts) == 1 {
			vector.DrawFilledCircle(screen, float32(pts[0].X*pixelsPerUnit)+sx, float32(pts[0].Y*pixelsPerUnit)+sy,
				float32(max(a.Transform.Scale, 0.5)*pixelsPerUnit/2), col, true)
			continue
		}
		width := float32(1.5)
		if a.Filled && a.Transform.Opacity >= 0.75 {
			width = 3
		}
		for i := range pts {
			p, q := pts[i], pts[(i+1)%len(pts)]
			vector.StrokeLine(screen,
				float32(p.X*pixelsPerUnit)+sx, float32(p.Y*pixelsPerUnit)+sy,
				float32(q.X*pixelsPerUnit)+sx, float32(q.Y*pixelsPerUnit)+sy,
				width, col, true)
		}
		if a.Label != "" {
			ebitenutil.DebugPrintAt(screen, a.Label,
				int(a.Pos.X*pixelsPerUnit)-len(a.Label)*3,
				int((a.Pos.Y+a.Radius*a.Transform.Scale+2)*pixelsPerUnit))
		}
	}

	for _, d := range v.Dots {
		if d.Opacity < draw.MinVisibleOpacity {
			continue
		}
		col, ok := hintColors[d.Hint]
		if !ok {
			col = color.RGBA{0xff, 0xff, 0xff, 0xff}
		}
		vector.DrawFilledCircle(screen, float32(d.Pos.X*pixelsPerUnit)+sx, float32(d.Pos.Y*pixelsPerUnit)+sy,
			float32(max(d.Size, 0.3)*pixelsPerUnit/2), fade(col, d.Opacity), true)
	}

	if o := v.Overlay; o != nil && o.Opacity > 0 {
		drawOverlay(screen, o)
	}

	hud := fmt.Sprintf("tier %s  fps %.1f (tps %.0f)  particles %d  anims %d  weather %s\n%s",
		v.Tier, v.FPS, ebiten.ActualTPS(), v.Particles, v.Animations, v.Weather, settingsLine(g.srv.Settings().Settings(), g.run))
	if time.Now().Before(g.noticeUntil) {
		hud += "\n" + g.notice
	}
	ebitenutil.DebugPrint(screen, hud)
}

// drawOverlay shades the window in horizontal bands following the overlay's
// vertical gradient.
func drawOverlay(screen *ebiten.Image, o *fx.Overlay) {
	base := parseHex(o.Color, colLabel)
	b := screen.Bounds()
	const bands = 24
	h := float32(b.Dy()) / bands
	for i := 0; i < bands; i++ {
		f := float64(i) / (bands - 1)
		a := o.Gradient[0] + (o.Gradient[1]-o.Gradient[0])*f
		vector.DrawFilledRect(screen, 0, float32(i)*h, float32(b.Dx()), h+1, fade(base, a), false)
	}
}

func settingsLine(s fx.Settings, run bool) string {
	flag := func(on bool, c byte) byte {
		if on {
			return c
		}
		return '-'
	}
	speed := "walk"
	if run {
		speed = "run"
	}
	return fmt.Sprintf("[%c%c%c%c%c] q:%s %s", flag(s.ParticlesEnabled, 'Z'), flag(s.AnimationsEnabled, 'N'),
		flag(s.ScreenShakeEnabled, 'R'), flag(s.WeatherEffectsEnabled, 'Y'), flag(s.ReducedMotion, 'M'), s.Quality, speed)
}

// fade scales col to opacity a in premultiplied form.
func fade(col color.RGBA, a float64) color.RGBA {
	a = min(max(a, 0), 1)
	return color.RGBA{
		R: uint8(float64(col.R) * a),
		G: uint8(float64(col.G) * a),
		B: uint8(float64(col.B) * a),
		A: uint8(float64(col.A) * a),
	}
}

func parseHex(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return fallback
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 0xff}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	l := g.srv.Layout()
	return int(l.Width * pixelsPerUnit), int(l.Height * pixelsPerUnit)
}

var _ ebiten.Game = (*game)(nil)
