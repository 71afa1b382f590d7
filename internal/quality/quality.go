// Package quality measures frame cadence and steers the shared quality tier.
package quality

import (
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Defaults for the sampling window and the hysteresis band.
const (
	DefaultWindow       = time.Second
	DefaultDemoteBelow  = 30.0
	DefaultPromoteAbove = 50.0
)

// Options configures a Controller. Zero fields take the defaults.
type Options struct {
	Initial      fx.Tier
	Window       time.Duration
	DemoteBelow  float64
	PromoteAbove float64
}

// Change is the event emitted when the tier moves.
type Change struct {
	From, To fx.Tier
	FPS      float64
	At       time.Time
}

// Controller counts ticks over a sliding window and demotes or promotes the
// tier by one step each time a window closes outside the dead band.
type Controller struct {
	tier         fx.Tier
	pinned       bool
	window       time.Duration
	demoteBelow  float64
	promoteAbove float64

	windowStart time.Time
	ticks       int
	fps         float64
}

// NewController creates a controller starting at opts.Initial.
func NewController(opts Options) *Controller {
	c := &Controller{
		tier:         opts.Initial,
		window:       opts.Window,
		demoteBelow:  opts.DemoteBelow,
		promoteAbove: opts.PromoteAbove,
	}
	if c.window <= 0 {
		c.window = DefaultWindow
	}
	if c.demoteBelow <= 0 {
		c.demoteBelow = DefaultDemoteBelow
	}
	if c.promoteAbove <= c.demoteBelow {
		c.promoteAbove = max(DefaultPromoteAbove, c.demoteBelow)
	}
	return c
}

// Tier returns the current tier. Consumers read it lazily each update.
func (c *Controller) Tier() fx.Tier {
	return c.tier
}

// FPS returns the rate measured by the last closed window.
func (c *Controller) FPS() float64 {
	return c.fps
}

// Pinned reports whether the tier is fixed by the user.
func (c *Controller) Pinned() bool {
	return c.pinned
}

// Pin fixes the tier. Sampling continues so FPS stays meaningful, but
// windows no longer move the tier.
func (c *Controller) Pin(t fx.Tier) (Change, bool) {
	c.pinned = true
	if t == c.tier {
		return Change{}, false
	}
	ch := Change{From: c.tier, To: t, FPS: c.fps, At: c.windowStart}
	c.tier = t
	return ch, true
}

// Unpin hands the tier back to the adaptive loop.
func (c *Controller) Unpin() {
	c.pinned = false
}

// Sample records one tick. When the window closes it computes
// fps = ticks/elapsed and may move the tier by one step.
func (c *Controller) Sample(now time.Time) (Change, bool) {
	if c.windowStart.IsZero() {
		c.windowStart = now
		return Change{}, false
	}
	c.ticks++

	elapsed := now.Sub(c.windowStart)
	if elapsed < c.window {
		return Change{}, false
	}

	c.fps = float64(c.ticks) / elapsed.Seconds()
	c.windowStart = now
	c.ticks = 0

	if c.pinned {
		return Change{}, false
	}

	next := c.tier
	switch {
	case c.fps < c.demoteBelow:
		next = c.tier.Demote()
	case c.fps > c.promoteAbove:
		next = c.tier.Promote()
	}
	if next == c.tier {
		return Change{}, false
	}

	ch := Change{From: c.tier, To: next, FPS: c.fps, At: now}
	c.tier = next
	return ch, true
}
