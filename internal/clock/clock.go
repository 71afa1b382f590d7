// Package clock supplies the monotonic time the scheduler runs on.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// System provides the real system time with monotonic clock readings.
type System struct{}

// Now returns the current time with monotonic clock reading.
func (System) Now() time.Time {
	return time.Now()
}

// Manual provides a controllable time source for tests and replays.
type Manual struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewManual creates a manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{currentTime: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// Set sets the current time.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
	return m.currentTime
}

var (
	_ Clock = System{}
	_ Clock = (*Manual)(nil)
)
