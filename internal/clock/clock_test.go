package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_Advance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManual(start)
	assert.Equal(t, start, c.Now())

	now := c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), now)
	assert.Equal(t, now, c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystem_Monotonic(t *testing.T) {
	var c System
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}
