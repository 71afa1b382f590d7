// Package anim implements the registry of typed, target-bound animations.
//
// Each animation is a finite (or looping) state machine advanced once per
// tick. The transform for a given progress is computed by a pure function
// looked up by (category, kind) in a dispatch table.
package anim

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/easing"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// ID identifies an animation. IDs increase monotonically per registry.
type ID = uint64

// DefaultMaxEntries bounds registry growth when Options.MaxEntries is unset.
const DefaultMaxEntries = 512

// ReducedMotionDuration replaces the duration of non-looping animations
// while reduced motion is on.
const ReducedMotionDuration = 10 * time.Millisecond

// Payload carries kind-specific parameters.
type Payload struct {
	From      fx.Vec2 `json:"from"`
	To        fx.Vec2 `json:"to"`
	Level     int     `json:"level,omitempty"`
	Frames    int     `json:"frames,omitempty"`    // sprite frame count
	Amplitude float64 `json:"amplitude,omitempty"` // kind-specific magnitude, 0 = default
	Easing    string  `json:"easing,omitempty"`    // easing.ByName key, "" = kind default
	Hint      string  `json:"hint,omitempty"`
}

// Spec describes an animation to start.
type Spec struct {
	Category fx.Category
	Target   fx.Handle
	Kind     string
	Duration time.Duration
	Loop     bool
	Payload  Payload
	// OnComplete fires once, after the animation has been removed. It is
	// never called for looping, cancelled or evicted animations.
	OnComplete func(ID)
}

// Animation is a running entry.
type Animation struct {
	Spec
	ID        ID
	StartedAt time.Time
}

// Progress returns clamp(elapsed/duration, 0, 1).
func (a *Animation) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	return easing.Clamp01(float64(now.Sub(a.StartedAt)) / float64(a.Duration))
}

// UpdateFunc maps a progress value to a transform. It must be pure.
type UpdateFunc func(target fx.Handle, p Payload, progress float64) fx.Transform

type key struct {
	category fx.Category
	kind     string
}

// Options configures a Registry.
type Options struct {
	MaxEntries int
	Logger     *log.Logger
}

// Registry owns every running animation.
type Registry struct {
	entries       []*Animation
	table         map[key]UpdateFunc
	nextID        ID
	enabled       bool
	reducedMotion bool
	maxEntries    int
	evictions     int
	misses        map[key]struct{}
	log           *log.Logger
}

// NewRegistry creates an enabled registry with the built-in kinds.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		table:      make(map[key]UpdateFunc, len(builtins)),
		enabled:    true,
		maxEntries: opts.MaxEntries,
		misses:     make(map[key]struct{}),
		log:        opts.Logger,
	}
	if r.maxEntries <= 0 {
		r.maxEntries = DefaultMaxEntries
	}
	if r.log == nil {
		r.log = log.New(io.Discard)
	}
	for k, fn := range builtins {
		r.table[k] = fn
	}
	return r
}

// Register installs or replaces the update function for (category, kind).
func (r *Registry) Register(c fx.Category, kind string, fn UpdateFunc) {
	r.table[key{c, kind}] = fn
}

// Known reports whether (category, kind) has an update function.
func (r *Registry) Known(c fx.Category, kind string) bool {
	_, ok := r.table[key{c, kind}]
	return ok
}

// SetEnabled toggles the global animation feature flag.
func (r *Registry) SetEnabled(on bool) {
	r.enabled = on
}

// SetReducedMotion toggles near-zero durations for new animations.
func (r *Registry) SetReducedMotion(on bool) {
	r.reducedMotion = on
}

// Len returns the number of running animations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Evictions returns how many entries were dropped to respect MaxEntries.
func (r *Registry) Evictions() int {
	return r.evictions
}

// UnknownKinds returns how many distinct (category, kind) pairs missed the
// dispatch table.
func (r *Registry) UnknownKinds() int {
	return len(r.misses)
}

// Start registers a new animation beginning at now. It fails only when the
// animation feature flag is off.
func (r *Registry) Start(now time.Time, spec Spec) (ID, bool) {
	if !r.enabled {
		return 0, false
	}
	if spec.Duration < 0 {
		spec.Duration = 0
	}
	if spec.Category == fx.CategoryUI && spec.Kind == KindSpinner {
		spec.Loop = true
	}
	if r.reducedMotion && !spec.Loop && spec.Duration > ReducedMotionDuration {
		spec.Duration = ReducedMotionDuration
	}

	for len(r.entries) >= r.maxEntries {
		r.evict()
	}

	r.nextID++
	r.entries = append(r.entries, &Animation{Spec: spec, ID: r.nextID, StartedAt: now})
	return r.nextID, true
}

// evict drops the oldest looping entry, or the oldest entry when none loop.
func (r *Registry) evict() {
	idx := slices.IndexFunc(r.entries, func(a *Animation) bool { return a.Loop })
	if idx < 0 {
		idx = 0
	}
	r.log.Debug("animation evicted", "id", r.entries[idx].ID, "kind", r.entries[idx].Kind, "err", fx.ErrCapacityExceeded)
	r.entries = slices.Delete(r.entries, idx, idx+1)
	r.evictions++
}

// Cancel removes an animation without firing its completion callback.
func (r *Registry) Cancel(id ID) bool {
	idx := slices.IndexFunc(r.entries, func(a *Animation) bool { return a.ID == id })
	if idx < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, idx, idx+1)
	return true
}

// CancelTarget removes every animation bound to target, optionally only
// those of one kind ("" matches all). No callbacks fire.
func (r *Registry) CancelTarget(target fx.Handle, kind string) int {
	before := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(a *Animation) bool {
		return a.Target == target && (kind == "" || a.Kind == kind)
	})
	return before - len(r.entries)
}

// Get returns a copy of the animation with the given id.
func (r *Registry) Get(id ID) (Animation, bool) {
	for _, a := range r.entries {
		if a.ID == id {
			return *a, true
		}
	}
	return Animation{}, false
}

// Update advances every animation once and returns its transform. Finished
// non-looping animations emit their final transform, are removed, and only
// then have their completion callbacks invoked, in start order.
func (r *Registry) Update(now time.Time) []fx.Command {
	cmds := make([]fx.Command, 0, len(r.entries))
	var done []*Animation

	kept := r.entries[:0]
	for _, a := range r.entries {
		progress := a.Progress(now)
		if progress >= 1 {
			if !a.Loop {
				cmds = append(cmds, r.command(a, 1))
				done = append(done, a)
				continue
			}
			a.StartedAt = now
			progress = 0
		}
		cmds = append(cmds, r.command(a, progress))
		kept = append(kept, a)
	}
	clear(r.entries[len(kept):])
	r.entries = kept

	for _, a := range done {
		if a.OnComplete != nil {
			a.OnComplete(a.ID)
		}
	}
	return cmds
}

func (r *Registry) command(a *Animation, progress float64) fx.Command {
	k := key{a.Category, a.Kind}
	tr := fx.Identity()
	if fn, ok := r.table[k]; ok {
		tr = fn(a.Target, a.Payload, progress)
	} else if _, seen := r.misses[k]; !seen {
		r.misses[k] = struct{}{}
		r.log.Warn("no update function, using identity",
			"category", a.Category, "kind", a.Kind, "err", fx.ErrUnknownKind)
	}
	return fx.Command{
		Source:    fx.SourceAnimation,
		Handle:    a.Target,
		Transform: tr,
		Hint:      a.Payload.Hint,
	}
}
