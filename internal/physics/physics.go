// Package physics provides distance helpers and a bounded spatial grid for
// hit testing in the effects viewport.
package physics

import (
	"math"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// Distance is the Euclidean distance between a and b.
func Distance(a, b fx.Vec2) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared is the squared distance between a and b. Prefer it for
// comparisons.
func DistanceSquared(a, b fx.Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// PointInCircle reports whether p lies within radius of centre.
func PointInCircle(p, centre fx.Vec2, radius float64) bool {
	return DistanceSquared(p, centre) <= radius*radius
}

// Nearest returns the index of the candidate closest to p, or -1 when there
// are none. Ties go to the earlier candidate.
func Nearest(p fx.Vec2, candidates []fx.Vec2) int {
	best, bestDist := -1, math.Inf(1)
	for i, c := range candidates {
		if d := DistanceSquared(p, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
