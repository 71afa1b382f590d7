// Package shake drives the single transient full-viewport perturbation.
package shake

import (
	"math/rand"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/easing"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// rotationFactor scales intensity (viewport units) into degrees of roll.
const rotationFactor = 0.1

// Controller holds at most one active shake. A trigger while shaking is
// ignored rather than queued.
type Controller struct {
	active    bool
	intensity float64
	duration  time.Duration
	startedAt time.Time
	base      fx.Transform
	restore   bool // emit base once on the next Update
	rng       *rand.Rand
}

// NewController creates an idle controller resting at the identity transform.
func NewController(rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{base: fx.Identity(), rng: rng}
}

// SetBase sets the transform the viewport rests at. It is restored exactly
// when a shake completes.
func (c *Controller) SetBase(t fx.Transform) {
	c.base = t
}

// Base returns the rest transform.
func (c *Controller) Base() fx.Transform {
	return c.base
}

// Active reports whether a shake is in progress.
func (c *Controller) Active() bool {
	return c.active
}

// Trigger starts a shake unless one is already running. Non-positive
// intensity or negative duration is ignored.
func (c *Controller) Trigger(now time.Time, intensity float64, duration time.Duration) bool {
	if c.active || intensity <= 0 || duration < 0 {
		return false
	}
	c.active = true
	c.restore = false
	c.intensity = intensity
	c.duration = duration
	c.startedAt = now
	return true
}

// Stop ends the current shake. The next Update returns the base transform
// once so the viewport does not keep a residual offset.
func (c *Controller) Stop() {
	if c.active {
		c.active = false
		c.restore = true
	}
}

// Update returns the viewport command for this tick. Offsets are bounded by
// intensity·(1-progress); the completion tick returns the base transform.
func (c *Controller) Update(now time.Time) (fx.Command, bool) {
	if !c.active {
		if !c.restore {
			return fx.Command{}, false
		}
		c.restore = false
		return c.command(c.base), true
	}

	progress := 1.0
	if c.duration > 0 {
		progress = easing.Clamp01(float64(now.Sub(c.startedAt)) / float64(c.duration))
	}

	t := c.base
	if progress >= 1 {
		c.active = false
	} else {
		decay := c.intensity * (1 - progress)
		t.Translate.X += (c.rng.Float64()*2 - 1) * decay
		t.Translate.Y += (c.rng.Float64()*2 - 1) * decay
		t.Rotate += (c.rng.Float64()*2 - 1) * decay * rotationFactor
	}

	return c.command(t), true
}

func (c *Controller) command(t fx.Transform) fx.Command {
	return fx.Command{
		Source:    fx.SourceShake,
		Handle:    fx.ViewportHandle,
		Transform: t,
	}
}
