// Package settings persists the user's effect settings and publishes the
// live copy the engine reads every tick.
package settings

import (
	"context"
	"sync/atomic"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Store loads and saves settings. A store with nothing saved yet returns
// fx.DefaultSettings and no error.
type Store interface {
	Load(ctx context.Context) (fx.Settings, error)
	Save(ctx context.Context, s fx.Settings) error
}

// Live holds the current settings. Reads and writes are safe from any
// goroutine; it satisfies engine.SettingsSource.
type Live struct {
	cur atomic.Pointer[fx.Settings]
}

// NewLive creates a Live starting at s.
func NewLive(s fx.Settings) *Live {
	l := &Live{}
	l.cur.Store(&s)
	return l
}

// Settings returns a copy of the current settings.
func (l *Live) Settings() fx.Settings {
	return *l.cur.Load()
}

// Set replaces the current settings.
func (l *Live) Set(s fx.Settings) {
	l.cur.Store(&s)
}

// Update applies fn to a copy of the current settings and publishes the
// result. Concurrent updates are retried, never lost.
func (l *Live) Update(fn func(*fx.Settings)) fx.Settings {
	for {
		old := l.cur.Load()
		next := *old
		fn(&next)
		if l.cur.CompareAndSwap(old, &next) {
			return next
		}
	}
}
