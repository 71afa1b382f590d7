package particle

import (
	"math/rand"
	"slices"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Pool is a bounded collection of particles. When full, the earliest
// admitted particle is evicted to admit a new one so the newest feedback
// always wins. Staggered burst members wait in a pending queue and are
// admitted when their start time arrives; they take no capacity until then.
type Pool struct {
	capacity  int
	particles []Particle // admission order
	pending   []Particle // start time order
	nextID    ID
	evictions int
	rng       *rand.Rand
}

// NewPool creates a pool admitting at most capacity particles. rng drives
// burst jitter; nil seeds one from the current time.
func NewPool(capacity int, rng *rand.Rand) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pool{
		capacity:  capacity,
		particles: make([]Particle, 0, capacity),
		rng:       rng,
	}
}

// Capacity returns the current maximum particle count.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Len returns the number of live particles.
func (p *Pool) Len() int {
	return len(p.particles)
}

// Pending returns the number of staggered particles not yet admitted.
func (p *Pool) Pending() int {
	return len(p.pending)
}

// Evictions returns how many particles were evicted under capacity pressure.
func (p *Pool) Evictions() int {
	return p.evictions
}

// SetCapacity changes the maximum, evicting the oldest particles when the
// pool shrinks below its current size.
func (p *Pool) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	p.capacity = n
	for len(p.particles) > p.capacity {
		p.evictOldest()
	}
	if len(p.pending) > p.capacity {
		p.dropPending(len(p.pending) - p.capacity)
	}
}

// Spawn admits one particle created at now. It returns false only when the
// pool has zero capacity.
func (p *Pool) Spawn(now time.Time, params Params) (ID, bool) {
	if p.capacity == 0 {
		return 0, false
	}
	p.nextID++
	p.admit(newParticle(p.nextID, now, params))
	return p.nextID, true
}

// schedule queues a particle that starts at at. The queue holds at most
// capacity entries; the earliest scheduled ones are dropped first.
func (p *Pool) schedule(at time.Time, params Params) (ID, bool) {
	if p.capacity == 0 {
		return 0, false
	}
	if len(p.pending) >= p.capacity {
		p.dropPending(len(p.pending) - p.capacity + 1)
	}
	p.nextID++
	pt := newParticle(p.nextID, at, params)
	i, _ := slices.BinarySearchFunc(p.pending, at, func(q Particle, t time.Time) int {
		if q.CreatedAt.After(t) {
			return 1
		}
		return -1
	})
	p.pending = slices.Insert(p.pending, i, pt)
	return p.nextID, true
}

func (p *Pool) admit(pt Particle) {
	for len(p.particles) >= p.capacity {
		p.evictOldest()
	}
	p.particles = append(p.particles, pt)
}

// evictOldest removes the earliest admitted particle.
func (p *Pool) evictOldest() {
	if len(p.particles) == 0 {
		return
	}
	p.particles = slices.Delete(p.particles, 0, 1)
	p.evictions++
}

func (p *Pool) dropPending(n int) {
	clear(p.pending[:n])
	p.pending = slices.Delete(p.pending, 0, n)
	p.evictions += n
}

// Update admits pending particles that are due, advances every live
// particle by one tick, drops those whose lifetime has elapsed, and returns
// transform snapshots for the survivors.
func (p *Pool) Update(now time.Time) []fx.Command {
	due := 0
	for due < len(p.pending) && !now.Before(p.pending[due].CreatedAt) {
		if pt := p.pending[due]; !pt.Expired(now) {
			p.admit(pt)
		}
		due++
	}
	if due > 0 {
		clear(p.pending[:due])
		p.pending = slices.Delete(p.pending, 0, due)
	}

	cmds := make([]fx.Command, 0, len(p.particles))
	kept := p.particles[:0]
	for i := range p.particles {
		pt := p.particles[i]
		if pt.Expired(now) {
			continue
		}
		pt.step(pt.Progress(now))
		kept = append(kept, pt)
		cmds = append(cmds, pt.command())
	}
	clear(p.particles[len(kept):])
	p.particles = kept
	return cmds
}

// RemoveTag drops every live or pending particle carrying tag and returns
// how many went.
func (p *Pool) RemoveTag(tag string) int {
	before := len(p.particles) + len(p.pending)
	tagged := func(pt Particle) bool { return pt.Tag == tag }
	p.particles = slices.DeleteFunc(p.particles, tagged)
	p.pending = slices.DeleteFunc(p.pending, tagged)
	return before - len(p.particles) - len(p.pending)
}

// CountTag returns the number of live particles carrying tag.
func (p *Pool) CountTag(tag string) int {
	n := 0
	for i := range p.particles {
		if p.particles[i].Tag == tag {
			n++
		}
	}
	return n
}

// Clear drops every particle, pending ones included.
func (p *Pool) Clear() {
	clear(p.particles)
	p.particles = p.particles[:0]
	clear(p.pending)
	p.pending = p.pending[:0]
}

// Snapshot returns a copy of the live particles in admission order.
func (p *Pool) Snapshot() []Particle {
	return slices.Clone(p.particles)
}
