package object

import (
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/draw"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/physics"
)

// ParticleState is one particle as it should appear in a view.
type ParticleState struct {
	Pos     fx.Vec2 `json:"pos"`
	Size    float64 `json:"size"`
	Rotate  float64 `json:"rotate,omitempty"`
	Opacity float64 `json:"opacity"`
	Hint    string  `json:"hint,omitempty"`
}

// View is an immutable picture of the scene after one engine frame. It is
// shared between goroutines and must not be modified.
type View struct {
	Seq        uint64          `json:"seq"`
	At         time.Time       `json:"at"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Tier       fx.Tier         `json:"tier"`
	FPS        float64         `json:"fps"`
	Weather    fx.WeatherKind  `json:"weather"`
	Particles  int             `json:"particles"`
	Animations int             `json:"animations"`
	Actors     []ActorState    `json:"actors"`
	Dots       []ParticleState `json:"dots"`
	Overlay    *fx.Overlay     `json:"overlay,omitempty"`
	Shake      fx.Transform    `json:"shake"`
	// Dropped counts commands for handles the scene does not know.
	Dropped int `json:"dropped"`

	gridOnce sync.Once
	grid     *physics.SpatialGrid
}

// Scene maps effect handles to actors and applies engine frames to them.
// Render runs on the engine's tick goroutine; View may be called from any
// goroutine.
type Scene struct {
	width, height float64
	logger        *log.Logger

	mu      sync.Mutex
	slots   []*slot
	index   map[fx.Handle]int
	unknown map[fx.Handle]struct{}
	dropped int

	view atomic.Pointer[View]
}

type slot struct {
	actor Actor
	tr    fx.Transform // offset from the rest position, kept until replaced
	hint  string
	seq   uint64 // frame that last reset tr
}

// NewScene creates an empty scene covering width×height logical units.
func NewScene(width, height float64, logger *log.Logger) *Scene {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Scene{
		width:   width,
		height:  height,
		logger:  logger,
		index:   make(map[fx.Handle]int),
		unknown: make(map[fx.Handle]struct{}),
	}
	s.view.Store(&View{Width: width, Height: height, Shake: fx.Identity()})
	return s
}

// Add registers an actor, replacing any actor with the same handle.
func (s *Scene) Add(a Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := &slot{actor: a, tr: fx.Identity()}
	if i, ok := s.index[a.Handle]; ok {
		s.slots[i] = sl
		return
	}
	s.index[a.Handle] = len(s.slots)
	s.slots = append(s.slots, sl)
	delete(s.unknown, a.Handle)
}

// Remove drops the actor bound to h. Later commands for h are discarded.
func (s *Scene) Remove(h fx.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[h]
	if !ok {
		return false
	}
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
	delete(s.index, h)
	for j := i; j < len(s.slots); j++ {
		s.index[s.slots[j].actor.Handle] = j
	}
	return true
}

// Actor returns the actor bound to h with its current rest position.
func (s *Scene) Actor(h fx.Handle) (Actor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[h]
	if !ok {
		return Actor{}, false
	}
	return s.slots[i].actor, true
}

// View returns the most recently published view.
func (s *Scene) View() *View {
	return s.view.Load()
}

// Render applies a frame and publishes the resulting view.
func (s *Scene) Render(f *fx.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &View{
		Seq:        f.Seq,
		At:         f.At,
		Width:      s.width,
		Height:     s.height,
		Tier:       f.Tier,
		FPS:        f.FPS,
		Weather:    f.Weather,
		Particles:  f.Particles,
		Animations: f.Animations,
		Shake:      fx.Identity(),
	}

	for _, c := range f.Commands {
		switch {
		case c.Overlay != nil:
			o := *c.Overlay
			v.Overlay = &o
		case c.Source == fx.SourceParticle:
			t := c.Transform
			v.Dots = append(v.Dots, ParticleState{
				Pos:     t.Translate,
				Size:    t.Scale,
				Rotate:  t.Rotate,
				Opacity: t.Opacity,
				Hint:    c.Hint,
			})
		case c.Handle == fx.ViewportHandle:
			v.Shake = c.Transform
		default:
			s.apply(f.Seq, c)
		}
	}

	v.Actors = make([]ActorState, len(s.slots))
	for i, sl := range s.slots {
		v.Actors[i] = ActorState{
			Handle:    sl.actor.Handle,
			Label:     sl.actor.Label,
			Pos:       sl.actor.Pos.Add(sl.tr.Translate),
			Transform: sl.tr,
			Outline:   sl.actor.outline(sl.tr.Frame),
			Filled:    sl.actor.Filled,
			Radius:    sl.actor.radius(),
			Hint:      sl.hint,
		}
	}
	v.Dropped = s.dropped
	s.view.Store(v)
}

// apply folds one actor command into its slot. The first command for an
// actor in a frame replaces the previous offset; later ones compose with it.
func (s *Scene) apply(seq uint64, c fx.Command) {
	i, ok := s.index[c.Handle]
	if !ok {
		s.dropped++
		if _, seen := s.unknown[c.Handle]; !seen {
			s.unknown[c.Handle] = struct{}{}
			s.logger.Debug("dropping command", "handle", c.Handle, "source", c.Source, "err", fx.ErrInvalidTarget)
		}
		return
	}
	sl := s.slots[i]

	t := c.Transform
	if t.Absolute {
		sl.actor.Pos = t.Translate
		t.Translate = fx.Vec2{}
		t.Absolute = false
	}

	if sl.seq != seq {
		sl.seq = seq
		sl.tr = t
		sl.hint = c.Hint
		return
	}
	sl.tr.Translate = sl.tr.Translate.Add(t.Translate)
	sl.tr.Scale *= t.Scale
	sl.tr.Rotate += t.Rotate
	sl.tr.Opacity *= t.Opacity
	if t.Frame != 0 {
		sl.tr.Frame = t.Frame
	}
	if c.Hint != "" {
		sl.hint = c.Hint
	}
}

// Actor returns the state of the actor bound to h in this view.
func (v *View) Actor(h fx.Handle) (ActorState, bool) {
	for _, a := range v.Actors {
		if a.Handle == h {
			return a, true
		}
	}
	return ActorState{}, false
}

// Pick returns the visible actor whose pick circle contains (x, y), nearest
// centre first.
func (v *View) Pick(x, y float64) (fx.Handle, bool) {
	v.gridOnce.Do(v.buildGrid)

	best := -1
	bestDist := math.Inf(1)
	p := fx.Vec2{X: x, Y: y}
	v.grid.QueryAround(x, y, func(i int) bool {
		a := v.Actors[i]
		if !physics.PointInCircle(p, a.Pos, a.Radius*a.Transform.Scale) {
			return false
		}
		if d := physics.DistanceSquared(p, a.Pos); d < bestDist {
			best, bestDist = i, d
		}
		return false
	})
	if best < 0 {
		return "", false
	}
	return v.Actors[best].Handle, true
}

func (v *View) buildGrid() {
	cell := 8.0
	for _, a := range v.Actors {
		cell = max(cell, a.Radius*a.Transform.Scale)
	}
	v.grid = physics.NewSpatialGrid(v.Width, v.Height, cell)
	for i, a := range v.Actors {
		if a.Visible() {
			v.grid.Insert(a.Pos.X, a.Pos.Y, i)
		}
	}
}

// Draw renders the view onto the canvas: the weather overlay as background
// shading, actors, then particles, all offset by the viewport shake.
func (v *View) Draw(ctx DrawContext) error {
	c := ctx.Canvas
	c.Clear()
	c.SetShift(v.Shake.Translate.X, v.Shake.Translate.Y)
	if v.Overlay != nil {
		c.SetBackground(overlayShading(*v.Overlay, c.TerminalWidth(), c.TerminalHeight()))
	} else {
		c.SetBackground(nil)
	}

	for _, a := range v.Actors {
		if err := a.Draw(ctx); err != nil {
			return err
		}
	}
	for _, p := range v.Dots {
		if p.Opacity < draw.MinVisibleOpacity {
			continue
		}
		c.Dot(p.Pos.X, p.Pos.Y, p.Size)
	}
	return nil
}

// Labels returns the visible actor labels placed just below each actor.
// They are drawn after the canvas so they sit on top of it.
func (v *View) Labels(c *draw.Canvas) []Text {
	var out []Text
	for _, a := range v.Actors {
		if a.Label == "" || !a.Visible() {
			continue
		}
		col, row := c.LogicalToTerminal(a.Pos.X, a.Pos.Y+a.Radius*a.Transform.Scale+2)
		if row < 1 || row > c.TerminalHeight() {
			continue
		}
		col -= len(a.Label) / 2
		out = append(out, Text{X: col, Y: row, Value: a.Label, Color: draw.ColorDim})
	}
	return out
}

// overlayShading shades empty cells by the overlay's vertical gradient,
// modulated by a band pattern that scrolls with the drift phase.
func overlayShading(o fx.Overlay, cols, rows int) func(col, row int) rune {
	span := float64(max(rows-1, 1))
	return func(col, row int) rune {
		t := float64(row) / span
		op := o.Gradient[0] + (o.Gradient[1]-o.Gradient[0])*t
		phase := float64(col)/float64(max(cols, 1))*4 + o.Drift*4
		op *= 0.8 + 0.2*math.Sin(2*math.Pi*phase)
		return draw.ShadeLevel(op)
	}
}
